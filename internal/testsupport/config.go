package testsupport

import (
	"path/filepath"
	"testing"

	"slideset/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.PresentationsDir = filepath.Join(base, "presentations")
	cfg.Paths.ImagesDir = filepath.Join(base, "images")
	cfg.Paths.AnnotationsPath = filepath.Join(base, "annotations.csv")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithLabelStrategy overrides extraction.label_strategy.
func WithLabelStrategy(strategy string) ConfigOption {
	return func(c *config.Config) {
		c.Extraction.LabelStrategy = strategy
	}
}

// WithLedgerKey overrides extraction.ledger_key.
func WithLedgerKey(scheme string) ConfigOption {
	return func(c *config.Config) {
		c.Extraction.LedgerKey = scheme
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
