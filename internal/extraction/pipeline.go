package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"slideset/internal/artifactstore"
	"slideset/internal/config"
	"slideset/internal/history"
	"slideset/internal/identifier"
	"slideset/internal/imaging"
	"slideset/internal/logging"
	"slideset/internal/preflight"
	"slideset/internal/runlock"
)

// LockName is the state-dir lock guarding the images directory.
const LockName = "extract"

// DeckSummary is the per-deck line of a run summary.
type DeckSummary struct {
	Deck    string
	Year    string
	Status  string
	Slides  int
	Staged  int
	Written int
	Err     error
}

const deckStatusOK = "ok"

// RunSummary is the outcome of an extraction or cleanup run.
type RunSummary struct {
	RunID      string
	Kind       history.Kind
	Status     history.Status
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Years      []string
	Decks      []DeckSummary

	DecksFailed       int
	Slides            int
	Observations      int
	Staged            int
	Written           int
	Converted         int
	SkippedNoDigit    int
	DecodeFailures    int
	Unverified        int
	ImageReadFailures int

	CleanupRan bool
	Cleanup    CleanupResult
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithHistory records every run in store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) {
		p.history = store
	}
}

// WithProgress reports deck and slide progress to progress.
func WithProgress(progress Progress) Option {
	return func(p *Pipeline) {
		if progress != nil {
			p.progress = progress
		}
	}
}

// WithReader overrides the presentation reader.
func WithReader(reader DocumentReader) Option {
	return func(p *Pipeline) {
		if reader != nil {
			p.reader = reader
		}
	}
}

// WithCodec overrides the image codec.
func WithCodec(codec Codec) Option {
	return func(p *Pipeline) {
		if codec != nil {
			p.codec = codec
		}
	}
}

// Pipeline drives deck discovery, walking, writing, and cleanup.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *artifactstore.Local
	codec    Codec
	reader   DocumentReader
	history  *history.Store
	progress Progress
	now      func() time.Time
}

// New builds a pipeline for cfg.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	store, err := artifactstore.New(cfg.Paths.ImagesDir)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:      cfg,
		logger:   logging.NewNop(),
		store:    store,
		codec:    imaging.NewCodec(cfg.Extraction.JPEGQuality),
		progress: NopProgress(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "extraction")
	return p, nil
}

// Run extracts every deck, then reconciles the images directory when
// extraction.cleanup is enabled. Cleanup is skipped when the run is
// cancelled so a partial ledger never deletes valid artifacts.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	return p.execute(ctx, history.KindExtract, false)
}

// Cleanup walks every deck without writing to rebuild the ledger, then
// reconciles the images directory. With dryRun nothing is removed.
func (p *Pipeline) Cleanup(ctx context.Context, dryRun bool) (RunSummary, error) {
	return p.execute(ctx, history.KindCleanup, dryRun)
}

func (p *Pipeline) execute(ctx context.Context, kind history.Kind, dryRun bool) (RunSummary, error) {
	lock, err := runlock.Acquire(p.cfg.LockPath(LockName))
	if err != nil {
		return RunSummary{}, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			p.logger.Debug("release extract lock failed", logging.Error(rerr))
		}
	}()

	if failed := preflight.Failures(preflight.RunAll(p.cfg)); len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, f := range failed {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Detail))
		}
		return RunSummary{}, fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
	}

	summary := RunSummary{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Status:    history.StatusRunning,
		DryRun:    dryRun,
		StartedAt: p.now(),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, p.logger)

	if p.history != nil {
		if err := p.history.Begin(ctx, history.Run{ID: summary.RunID, Kind: kind, DryRun: dryRun, StartedAt: summary.StartedAt}); err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions or delete the history database"),
				logging.String(logging.FieldImpact, "run will not appear in history"),
			)
		}
	}

	runErr := p.process(ctx, logger, &summary)
	summary.FinishedAt = p.now()
	switch {
	case runErr == nil:
		summary.Status = history.StatusCompleted
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		summary.Status = history.StatusCancelled
	default:
		summary.Status = history.StatusFailed
	}
	p.record(logger, summary, runErr)

	if runErr != nil {
		return summary, runErr
	}
	logger.Info("run complete",
		logging.String(logging.FieldEventType, string(kind)+"_complete"),
		logging.Int("decks", len(summary.Decks)),
		logging.Int("slides", summary.Slides),
		logging.Int("written", summary.Written),
		logging.Int("removed", len(summary.Cleanup.Removed)),
		logging.Int("remaining", summary.Cleanup.Remaining),
		logging.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, summary *RunSummary) error {
	decks, err := DiscoverDecks(p.cfg.Paths.PresentationsDir)
	if err != nil {
		return err
	}
	summary.Years = DeckYears(decks)
	logger.Info("decks discovered",
		logging.String(logging.FieldEventType, "decks_discovered"),
		logging.Int("decks", len(decks)),
		logging.String("years", strings.Join(summary.Years, ", ")),
	)

	walker := NewWalker(p.reader, LabelStrategy(p.cfg.Extraction.LabelStrategy), logger)
	walker.OnSlide(func(done, total int) {
		p.progress.Slide(currentDeck(summary), done, total)
	})
	writer := NewWriter(p.store, p.codec, logger)
	ledger := NewLedger(identifier.Scheme(p.cfg.Extraction.LedgerKey))
	write := summary.Kind == history.KindExtract

	p.progress.Start(len(decks))
	defer p.progress.Finish()

	for _, deck := range decks {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Decks = append(summary.Decks, DeckSummary{Deck: deck})
		line := &summary.Decks[len(summary.Decks)-1]

		result, err := walker.Walk(ctx, deck)
		if err != nil {
			deckErr, ok := IsDeckError(err)
			if !ok {
				return err
			}
			line.Status = string(deckErr.Kind)
			line.Err = deckErr
			summary.DecksFailed++
			logging.ErrorWithContext(logger, "deck skipped", "deck_"+string(deckErr.Kind),
				logging.String(logging.FieldDeck, deck),
				logging.Error(deckErr),
				logging.String(logging.FieldErrorHint, deckErrorHint(deckErr.Kind)),
				logging.String(logging.FieldImpact, "no artifacts from this deck"),
			)
			p.progress.DeckDone()
			continue
		}

		line.Year = result.Year
		line.Status = deckStatusOK
		line.Slides = result.Slides
		line.Staged = len(result.Staged)
		summary.Slides += result.Slides
		summary.Observations += len(result.Observations)
		summary.Staged += len(result.Staged)
		summary.ImageReadFailures += result.ImageReadFailures
		ledger.RecordAll(result.Observations)

		if write {
			for _, pair := range result.Staged {
				res := writer.Write(ctx, pair)
				switch res.Outcome {
				case OutcomeWritten:
					line.Written++
					summary.Written++
					if res.Converted {
						summary.Converted++
					}
				case OutcomeSkippedNoDigit:
					summary.SkippedNoDigit++
				case OutcomeDecodeFailed:
					summary.DecodeFailures++
				case OutcomeUnverified:
					summary.Unverified++
				}
			}
		}
		logger.Info("deck processed",
			logging.String(logging.FieldDeck, deck),
			logging.String(logging.FieldEventType, "deck_processed"),
			logging.Int("slides", result.Slides),
			logging.Int("staged", len(result.Staged)),
			logging.Int("written", line.Written),
		)
		p.progress.DeckDone()
	}

	if summary.Kind == history.KindExtract && !p.cfg.Extraction.Cleanup {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cleanup, err := Reconcile(ctx, p.store, ledger.Whitelist(), summary.DryRun, logger)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	summary.CleanupRan = true
	summary.Cleanup = cleanup
	return nil
}

func currentDeck(summary *RunSummary) string {
	if len(summary.Decks) == 0 {
		return ""
	}
	return summary.Decks[len(summary.Decks)-1].Deck
}

func deckErrorHint(kind DeckErrorKind) string {
	switch kind {
	case DeckYearMissing:
		return "rename the deck so its file name contains a 19xx or 20xx year"
	case DeckOpenFailed:
		return "confirm the file is a .pptx saved by PowerPoint or a compatible editor"
	default:
		return "check logs for details"
	}
}

func (p *Pipeline) record(logger *slog.Logger, summary RunSummary, runErr error) {
	if p.history == nil {
		return
	}
	run, decks := summary.historyRecord(runErr)
	// The run context may already be cancelled.
	if err := p.history.Finish(context.Background(), run, decks); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "run totals missing from history"),
		)
	}
}

func (s RunSummary) historyRecord(runErr error) (history.Run, []history.DeckResult) {
	run := history.Run{
		ID:             s.RunID,
		Kind:           s.Kind,
		Status:         s.Status,
		DryRun:         s.DryRun,
		StartedAt:      s.StartedAt,
		FinishedAt:     s.FinishedAt,
		DecksTotal:     len(s.Decks),
		DecksFailed:    s.DecksFailed,
		Slides:         s.Slides,
		Observations:   s.Observations,
		Staged:         s.Staged,
		Written:        s.Written,
		SkippedNoDigit: s.SkippedNoDigit,
		DecodeFailures: s.DecodeFailures,
		Unverified:     s.Unverified,
		Removed:        len(s.Cleanup.Removed),
		Remaining:      s.Cleanup.Remaining,
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	decks := make([]history.DeckResult, 0, len(s.Decks))
	for _, d := range s.Decks {
		row := history.DeckResult{
			DeckPath: d.Deck,
			Year:     d.Year,
			Status:   d.Status,
			Slides:   d.Slides,
			Staged:   d.Staged,
			Written:  d.Written,
		}
		if d.Err != nil {
			row.ErrorMessage = d.Err.Error()
		}
		if row.Status == "" {
			row.Status = string(history.StatusCancelled)
		}
		decks = append(decks, row)
	}
	return run, decks
}
