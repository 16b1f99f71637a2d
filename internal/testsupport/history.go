package testsupport

import (
	"testing"

	"slideset/internal/config"
	"slideset/internal/history"
)

// MustOpenHistory opens the run history database for cfg and closes it when
// the test finishes.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
