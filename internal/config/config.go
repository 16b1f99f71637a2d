package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output, and state locations.
type Paths struct {
	PresentationsDir string `toml:"presentations_dir"`
	ImagesDir        string `toml:"images_dir"`
	AnnotationsPath  string `toml:"annotations_path"`
	LogDir           string `toml:"log_dir"`
	StateDir         string `toml:"state_dir"`
}

// Extraction contains slide pairing, identifier, and artifact settings.
type Extraction struct {
	LabelStrategy string `toml:"label_strategy"`
	LedgerKey     string `toml:"ledger_key"`
	JPEGQuality   int    `toml:"jpeg_quality"`
	Cleanup       bool   `toml:"cleanup"`
}

// Annotation contains timing and display settings for the annotation session.
type Annotation struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
	CommitPauseMS  int `toml:"commit_pause_ms"`
	DisplayWidth   int `toml:"display_width"`
	DisplayHeight  int `toml:"display_height"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for slideset.
//
// Configuration sections by subsystem:
//   - Paths: deck input, image output, rating table, logs, and state
//   - Extraction: label strategy, ledger key scheme, re-encode quality
//   - Annotation: poll interval, commit pause, display bounds
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Annotation Annotation `toml:"annotation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slideset/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("slideset.toml")
	if err != nil {
		return "", false, err
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, log, and state directories. The
// presentations directory is an input and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ImagesDir, c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.AnnotationsPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the lock file guarding the named single-writer resource.
func (c *Config) LockPath(name string) string {
	return filepath.Join(c.Paths.StateDir, name+".lock")
}

// DatedLogPath returns the log file for a tool run on the given day, matching
// the {tool}_{YYYY-MM-DD}.log naming.
func (c *Config) DatedLogPath(tool string, day time.Time) string {
	return filepath.Join(c.Paths.LogDir, fmt.Sprintf("%s_%s.log", tool, day.Format("2006-01-02")))
}

// PollInterval returns the annotation idle tick interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Annotation.PollIntervalMS) * time.Millisecond
}

// CommitPause returns how long keys are ignored after a commit.
func (c *Config) CommitPause() time.Duration {
	return time.Duration(c.Annotation.CommitPauseMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
