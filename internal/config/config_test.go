package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"slideset/internal/config"
)

func TestLoadDefaultsResolveRelativeLayout(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}

	wantImages := filepath.Join(workDir, "images")
	if cfg.Paths.ImagesDir != wantImages {
		t.Fatalf("unexpected images dir: got %q want %q", cfg.Paths.ImagesDir, wantImages)
	}
	if cfg.Paths.PresentationsDir != filepath.Join(workDir, "presentations") {
		t.Fatalf("unexpected presentations dir: %q", cfg.Paths.PresentationsDir)
	}
	if cfg.Paths.AnnotationsPath != filepath.Join(workDir, "annotations.csv") {
		t.Fatalf("unexpected annotations path: %q", cfg.Paths.AnnotationsPath)
	}
	if cfg.Extraction.LabelStrategy != config.LabelStrategyLast {
		t.Fatalf("expected last label strategy, got %q", cfg.Extraction.LabelStrategy)
	}
	if cfg.Extraction.LedgerKey != config.LedgerKeyLabel {
		t.Fatalf("expected label ledger key, got %q", cfg.Extraction.LedgerKey)
	}
	if !cfg.Extraction.Cleanup {
		t.Fatal("expected cleanup enabled by default")
	}
	if cfg.PollInterval() != 33*time.Millisecond {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
	if cfg.CommitPause() != 100*time.Millisecond {
		t.Fatalf("unexpected commit pause: %v", cfg.CommitPause())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ImagesDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.PresentationsDir); !os.IsNotExist(err) {
		t.Fatalf("presentations dir should not be created, stat err=%v", err)
	}
}

func TestLoadProjectFileTakesPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workDir := t.TempDir()
	t.Chdir(workDir)

	body := "[paths]\nimages_dir = \"out\"\n\n[extraction]\nledger_key = \"DIGITS\"\n"
	if err := os.WriteFile(filepath.Join(workDir, "slideset.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != filepath.Join(workDir, "slideset.toml") {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ImagesDir != filepath.Join(workDir, "out") {
		t.Fatalf("unexpected images dir: %q", cfg.Paths.ImagesDir)
	}
	if cfg.Extraction.LedgerKey != config.LedgerKeyDigits {
		t.Fatalf("expected normalized ledger key, got %q", cfg.Extraction.LedgerKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "custom.toml")

	type payload struct {
		Paths struct {
			PresentationsDir string `toml:"presentations_dir"`
		} `toml:"paths"`
		Extraction struct {
			LabelStrategy string `toml:"label_strategy"`
			JPEGQuality   int    `toml:"jpeg_quality"`
		} `toml:"extraction"`
		Annotation struct {
			PollIntervalMS int `toml:"poll_interval_ms"`
		} `toml:"annotation"`
	}
	custom := payload{}
	custom.Paths.PresentationsDir = filepath.Join(tempDir, "decks")
	custom.Extraction.LabelStrategy = "first"
	custom.Extraction.JPEGQuality = 90
	custom.Annotation.PollIntervalMS = 50
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.PresentationsDir != filepath.Join(tempDir, "decks") {
		t.Fatalf("unexpected presentations dir: %q", cfg.Paths.PresentationsDir)
	}
	if cfg.Extraction.LabelStrategy != config.LabelStrategyFirst {
		t.Fatalf("expected first strategy, got %q", cfg.Extraction.LabelStrategy)
	}
	if cfg.Extraction.JPEGQuality != 90 {
		t.Fatalf("expected quality 90, got %d", cfg.Extraction.JPEGQuality)
	}
	if cfg.PollInterval() != 50*time.Millisecond {
		t.Fatalf("expected 50ms poll interval, got %v", cfg.PollInterval())
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "label_strategy") {
		t.Fatalf("sample config missing label_strategy: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Paths.ImagesDir != "images" {
		t.Fatalf("expected sample images dir, got %q", cfg.Paths.ImagesDir)
	}
	if cfg.Annotation.DisplayWidth != 1000 || cfg.Annotation.DisplayHeight != 680 {
		t.Fatalf("unexpected sample display bounds: %+v", cfg.Annotation)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "label strategy",
			mutate: func(c *config.Config) { c.Extraction.LabelStrategy = "concat" },
			want:   "extraction.label_strategy",
		},
		{
			name:   "ledger key",
			mutate: func(c *config.Config) { c.Extraction.LedgerKey = "hash" },
			want:   "extraction.ledger_key",
		},
		{
			name:   "jpeg quality",
			mutate: func(c *config.Config) { c.Extraction.JPEGQuality = 101 },
			want:   "extraction.jpeg_quality",
		},
		{
			name:   "poll interval",
			mutate: func(c *config.Config) { c.Annotation.PollIntervalMS = -1 },
			want:   "annotation.poll_interval_ms",
		},
		{
			name:   "commit pause",
			mutate: func(c *config.Config) { c.Annotation.CommitPauseMS = -5 },
			want:   "annotation.commit_pause_ms",
		},
		{
			name: "images equals presentations",
			mutate: func(c *config.Config) {
				c.Paths.ImagesDir = "/data/decks"
				c.Paths.PresentationsDir = "/data/decks"
			},
			want: "paths.images_dir",
		},
		{
			name: "state inside images",
			mutate: func(c *config.Config) {
				c.Paths.ImagesDir = "/data/images"
				c.Paths.StateDir = "/data/images"
			},
			want: "paths.state_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDatedLogPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/log/slideset"
	day := time.Date(2018, time.March, 4, 10, 0, 0, 0, time.UTC)
	got := cfg.DatedLogPath("extract", day)
	want := filepath.Join("/var/log/slideset", "extract_2018-03-04.log")
	if got != want {
		t.Fatalf("DatedLogPath = %q, want %q", got, want)
	}
}
