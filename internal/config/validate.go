package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateAnnotation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if filepath.Clean(c.Paths.PresentationsDir) == filepath.Clean(c.Paths.ImagesDir) {
		return errors.New("paths.images_dir must differ from paths.presentations_dir; cleanup would delete the decks")
	}
	if filepath.Clean(c.Paths.StateDir) == filepath.Clean(c.Paths.ImagesDir) {
		return errors.New("paths.state_dir must differ from paths.images_dir; cleanup would delete the lock and history files")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	switch c.Extraction.LabelStrategy {
	case LabelStrategyLast, LabelStrategyFirst:
	default:
		return fmt.Errorf("extraction.label_strategy must be %q or %q, got %q", LabelStrategyLast, LabelStrategyFirst, c.Extraction.LabelStrategy)
	}
	switch c.Extraction.LedgerKey {
	case LedgerKeyLabel, LedgerKeyDigits:
	default:
		return fmt.Errorf("extraction.ledger_key must be %q or %q, got %q", LedgerKeyLabel, LedgerKeyDigits, c.Extraction.LedgerKey)
	}
	if c.Extraction.JPEGQuality < 1 || c.Extraction.JPEGQuality > 100 {
		return errors.New("extraction.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateAnnotation() error {
	if err := ensurePositiveMap(map[string]int{
		"annotation.poll_interval_ms": c.Annotation.PollIntervalMS,
		"annotation.display_width":    c.Annotation.DisplayWidth,
		"annotation.display_height":   c.Annotation.DisplayHeight,
	}); err != nil {
		return err
	}
	if c.Annotation.CommitPauseMS < 0 {
		return errors.New("annotation.commit_pause_ms must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
