package extraction

import (
	"context"
	"errors"
	"log/slog"

	"slideset/internal/identifier"
	"slideset/internal/imaging"
	"slideset/internal/logging"
)

// WriteOutcome is the result of writing one staged pair.
type WriteOutcome string

const (
	OutcomeWritten        WriteOutcome = "written"
	OutcomeSkippedNoDigit WriteOutcome = "skipped_no_digit"
	OutcomeDecodeFailed   WriteOutcome = "decode_failed"
	OutcomeUnverified     WriteOutcome = "unverified"
)

// ArtifactStore is the output directory as seen by the writer and cleanup.
type ArtifactStore interface {
	Write(ctx context.Context, name string, data []byte) error
	Exists(name string) (bool, error)
}

// Codec normalizes image payloads into JPEG bytes.
type Codec interface {
	Normalize(data []byte) (imaging.Result, error)
}

// WriteResult describes one writer invocation.
type WriteResult struct {
	Name      string
	Outcome   WriteOutcome
	Converted bool
	Err       error
}

// Writer stores staged pairs under their canonical artifact names.
type Writer struct {
	store  ArtifactStore
	codec  Codec
	logger *slog.Logger
}

// NewWriter returns a writer backed by store and codec.
func NewWriter(store ArtifactStore, codec Codec, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{store: store, codec: codec, logger: logger}
}

// Write normalizes and stores pair. The file is verified after writing and
// written exactly once more when verification fails.
func (w *Writer) Write(ctx context.Context, pair StagedPair) WriteResult {
	name, ok := identifier.ArtifactName(pair.Label, pair.Year, pair.Ordinal)
	attrs := []logging.Attr{
		logging.String(logging.FieldDeck, pair.Deck),
		logging.Int(logging.FieldSlideID, pair.Ordinal),
	}
	if !ok {
		w.logger.Info("label has no digits; artifact skipped", logging.Args(append(attrs,
			logging.String("label", pair.Label),
			logging.String(logging.FieldEventType, "artifact_skipped_no_digit"),
		)...)...)
		return WriteResult{Outcome: OutcomeSkippedNoDigit}
	}
	attrs = append(attrs, logging.String(logging.FieldArtifact, name))

	normalized, err := w.codec.Normalize(pair.Image)
	if err != nil {
		logging.WarnWithContext(w.logger, "image payload could not be decoded", "artifact_decode_failed",
			append(attrs,
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the picture format inside the deck"),
				logging.String(logging.FieldImpact, "artifact missing from dataset"),
			)...,
		)
		return WriteResult{Name: name, Outcome: OutcomeDecodeFailed, Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return WriteResult{Name: name, Outcome: OutcomeUnverified, Err: err}
		}
		if err := w.store.Write(ctx, name, normalized.Data); err != nil {
			lastErr = err
		}
		exists, err := w.store.Exists(name)
		if err == nil && exists {
			w.logger.Debug("artifact written", logging.Args(append(attrs,
				logging.String("source_format", normalized.SourceFormat),
				logging.Bool("converted", normalized.Converted),
				logging.Int("attempt", attempt),
				logging.String(logging.FieldEventType, "artifact_written"),
			)...)...)
			return WriteResult{Name: name, Outcome: OutcomeWritten, Converted: normalized.Converted}
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("artifact missing after write")
	}
	logging.ErrorWithContext(w.logger, "artifact not present after retry", "artifact_unverified",
		append(attrs,
			logging.Error(lastErr),
			logging.String(logging.FieldErrorHint, "check free space and images_dir permissions"),
			logging.String(logging.FieldImpact, "artifact missing from dataset"),
		)...,
	)
	return WriteResult{Name: name, Outcome: OutcomeUnverified, Err: lastErr}
}
