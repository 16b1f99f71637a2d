package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey int

const (
	runIDKey contextKey = iota
	deckKey
)

// WithRunID tags ctx with the id of the current extraction run.
func WithRunID(ctx context.Context, runID string) context.Context {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run id stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithDeck tags ctx with the presentation currently being walked.
func WithDeck(ctx context.Context, deckPath string) context.Context {
	deckPath = strings.TrimSpace(deckPath)
	if deckPath == "" {
		return ctx
	}
	return context.WithValue(ctx, deckKey, deckPath)
}

// DeckFromContext returns the deck path stored by WithDeck.
func DeckFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	deck, ok := ctx.Value(deckKey).(string)
	return deck, ok && deck != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if deck, ok := DeckFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDeck, deck))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
