package extraction

import (
	"context"
	"log/slog"

	"slideset/internal/artifactstore"
	"slideset/internal/logging"
)

// ListRemover is the part of the output store cleanup needs.
type ListRemover interface {
	List(ctx context.Context) ([]artifactstore.Entry, error)
	Remove(name string) error
}

// CleanupResult contains the outcome of a reconciliation pass.
type CleanupResult struct {
	Removed   []string
	Remaining int
	Errors    []CleanupError
	DryRun    bool
}

// CleanupError pairs a file name with its removal error.
type CleanupError struct {
	Name  string
	Error error
}

// Reconcile deletes every file in store whose name is not in whitelist.
// Removal failures are collected and the pass continues. In dry-run mode
// orphans are reported as removed but left on disk.
func Reconcile(ctx context.Context, store ListRemover, whitelist map[string]struct{}, dryRun bool, logger *slog.Logger) (CleanupResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	result := CleanupResult{DryRun: dryRun}

	entries, err := store.List(ctx)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if _, keep := whitelist[entry.Name]; keep {
			result.Remaining++
			continue
		}
		if dryRun {
			result.Removed = append(result.Removed, entry.Name)
			result.Remaining++
			logger.Info("orphaned artifact would be removed",
				logging.String(logging.FieldArtifact, entry.Name),
				logging.String(logging.FieldEventType, "cleanup_dry_run"),
			)
			continue
		}
		if err := store.Remove(entry.Name); err != nil {
			result.Errors = append(result.Errors, CleanupError{Name: entry.Name, Error: err})
			result.Remaining++
			logging.WarnWithContext(logger, "failed to remove orphaned artifact", "cleanup_remove_failed",
				logging.String(logging.FieldArtifact, entry.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check images_dir permissions"),
				logging.String(logging.FieldImpact, "orphaned image remains in dataset"),
			)
			continue
		}
		result.Removed = append(result.Removed, entry.Name)
		logger.Debug("orphaned artifact removed",
			logging.String(logging.FieldArtifact, entry.Name),
			logging.String(logging.FieldEventType, "cleanup_removed"),
		)
	}
	return result, nil
}
