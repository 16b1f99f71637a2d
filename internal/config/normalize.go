package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeAnnotation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	defaults := Default().Paths
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.presentations_dir", &c.Paths.PresentationsDir, defaults.PresentationsDir},
		{"paths.images_dir", &c.Paths.ImagesDir, defaults.ImagesDir},
		{"paths.annotations_path", &c.Paths.AnnotationsPath, defaults.AnnotationsPath},
		{"paths.log_dir", &c.Paths.LogDir, defaults.LogDir},
		{"paths.state_dir", &c.Paths.StateDir, defaults.StateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.LabelStrategy = strings.ToLower(strings.TrimSpace(c.Extraction.LabelStrategy))
	if c.Extraction.LabelStrategy == "" {
		c.Extraction.LabelStrategy = defaultLabelStrategy
	}
	c.Extraction.LedgerKey = strings.ToLower(strings.TrimSpace(c.Extraction.LedgerKey))
	if c.Extraction.LedgerKey == "" {
		c.Extraction.LedgerKey = defaultLedgerKey
	}
	if c.Extraction.JPEGQuality == 0 {
		c.Extraction.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeAnnotation() {
	if c.Annotation.PollIntervalMS == 0 {
		c.Annotation.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Annotation.DisplayWidth == 0 {
		c.Annotation.DisplayWidth = defaultDisplayWidth
	}
	if c.Annotation.DisplayHeight == 0 {
		c.Annotation.DisplayHeight = defaultDisplayHeight
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
