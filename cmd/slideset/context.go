package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"slideset/internal/config"
	"slideset/internal/history"
	"slideset/internal/logging"
)

// logTools are the tools writing dated log files; retention prunes all of them.
var logTools = []string{"extract", "cleanup", "annotate"}

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// newLogger opens the dated log for tool and prunes old log files. The
// annotate tool logs to the file only so the terminal UI stays intact.
func (c *commandContext) newLogger(tool string, fileOnly bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, logPath, err := logging.NewFromConfig(cfg, tool, fileOnly)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.DatedLogTargets(cfg.Paths.LogDir, logPath, logTools...)...)
	return logger, nil
}

// openHistory opens the run history. A database that cannot be opened is
// reported and the command continues without history.
func (c *commandContext) openHistory(logger *slog.Logger) *history.Store {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		hint := "check state_dir permissions"
		if errors.Is(err, history.ErrSchemaMismatch) {
			hint = "delete the history database to start a fresh history"
		}
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
		return nil
	}
	return store
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
