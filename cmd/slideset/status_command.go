package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"slideset/internal/annotation"
	"slideset/internal/artifactstore"
	"slideset/internal/config"
	"slideset/internal/extraction"
	"slideset/internal/preflight"
	"slideset/internal/runlock"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, locks, and dataset progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Paths", colorize)...)
			results := preflight.RunAll(cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					if r.Optional {
						kind = statusWarn
					}
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Locks", colorize)...)
			lines = append(lines,
				lockLine(cfg, "Extraction", extraction.LockName, colorize),
				lockLine(cfg, "Annotation", annotateLockName, colorize),
			)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dataset", colorize)...)
			lines = append(lines, datasetLines(cmd.Context(), cfg, colorize)...)
			lines = append(lines, renderStatusLine("History", statusInfo, cfg.HistoryPath(), colorize))

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed := preflight.Failures(results); len(failed) > 0 {
				return fmt.Errorf("%d required checks failed", len(failed))
			}
			return nil
		},
	}
}

func lockLine(cfg *config.Config, label, name string, colorize bool) string {
	held, err := runlock.Held(cfg.LockPath(name))
	switch {
	case err != nil:
		return renderStatusLine(label, statusWarn, err.Error(), colorize)
	case held:
		return renderStatusLine(label, statusWarn, "in use by another process", colorize)
	default:
		return renderStatusLine(label, statusOK, "free", colorize)
	}
}

func imagesLine(ctx context.Context, cfg *config.Config, colorize bool) string {
	store, err := artifactstore.New(cfg.Paths.ImagesDir)
	if err != nil {
		return renderStatusLine("Images", statusError, err.Error(), colorize)
	}
	entries, err := store.List(ctx)
	if err != nil {
		return renderStatusLine("Images", statusError, err.Error(), colorize)
	}
	var total uint64
	for _, e := range entries {
		total += uint64(e.Size)
	}
	return renderStatusLine("Images", statusInfo,
		fmt.Sprintf("%d files, %s", len(entries), humanize.Bytes(total)), colorize)
}

func datasetLines(ctx context.Context, cfg *config.Config, colorize bool) []string {
	var lines []string

	decks, err := extraction.DiscoverDecks(cfg.Paths.PresentationsDir)
	if err != nil {
		lines = append(lines, renderStatusLine("Decks", statusError, err.Error(), colorize))
	} else {
		msg := fmt.Sprintf("%d found", len(decks))
		if years := extraction.DeckYears(decks); len(years) > 0 {
			msg += " (" + strings.Join(years, ", ") + ")"
		}
		lines = append(lines, renderStatusLine("Decks", statusInfo, msg, colorize))
	}

	lines = append(lines, imagesLine(ctx, cfg, colorize))

	table, err := annotation.NewCSVStore(cfg.Paths.AnnotationsPath).Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		lines = append(lines, renderStatusLine("Annotations", statusInfo, "no table yet", colorize))
	case err != nil:
		lines = append(lines, renderStatusLine("Annotations", statusError, err.Error(), colorize))
	default:
		unrated := table.Counts()[annotation.CategoryNone]
		kind := statusOK
		if unrated > 0 {
			kind = statusInfo
		}
		lines = append(lines, renderStatusLine("Annotations", kind,
			fmt.Sprintf("%d of %d rated", table.Len()-unrated, table.Len()), colorize))
	}
	return lines
}
