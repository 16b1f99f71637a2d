package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slideset/internal/extraction"
	"slideset/internal/history"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract labeled slide images from every deck",
		Long: "Walk every presentation in presentations_dir, write one JPEG per slide\n" +
			"that pairs a digit-bearing label with an image, then remove files in\n" +
			"images_dir that no slide accounts for (unless extraction.cleanup is off).",
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := extraction.NopProgress()
			if !noProgress {
				progress = extraction.NewTerminalProgress(os.Stderr)
			}
			summary, err := runPipeline(ctx, "extract", progress, func(p *extraction.Pipeline) (extraction.RunSummary, error) {
				return p.Run(cmd.Context())
			})
			if summary.RunID != "" {
				printRunSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the terminal progress bar")
	return cmd
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove images that no slide accounts for",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runPipeline(ctx, "cleanup", extraction.NopProgress(), func(p *extraction.Pipeline) (extraction.RunSummary, error) {
				return p.Cleanup(cmd.Context(), dryRun)
			})
			if summary.RunID != "" {
				printRunSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report orphaned images without removing them")
	return cmd
}

func runPipeline(ctx *commandContext, tool string, progress extraction.Progress, run func(*extraction.Pipeline) (extraction.RunSummary, error)) (extraction.RunSummary, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return extraction.RunSummary{}, err
	}
	logger, err := ctx.newLogger(tool, false)
	if err != nil {
		return extraction.RunSummary{}, err
	}

	opts := []extraction.Option{
		extraction.WithLogger(logger),
		extraction.WithProgress(progress),
	}
	if store := ctx.openHistory(logger); store != nil {
		defer store.Close()
		opts = append(opts, extraction.WithHistory(store))
	}

	pipeline, err := extraction.New(cfg, opts...)
	if err != nil {
		return extraction.RunSummary{}, err
	}
	return run(pipeline)
}

func printRunSummary(out io.Writer, s extraction.RunSummary) {
	colorize := shouldColorize(out)
	title := "Extraction"
	if s.Kind == history.KindCleanup {
		title = "Cleanup"
		if s.DryRun {
			title += " (dry run)"
		}
	}

	lines := renderSectionHeader(title+" "+shortID(s.RunID), colorize)
	lines = append(lines, renderStatusLine("Status", runStatusKind(s.Status), string(s.Status), colorize))
	lines = append(lines, renderStatusLine("Decks", countKind(s.DecksFailed, statusWarn),
		fmt.Sprintf("%d processed, %d failed", len(s.Decks), s.DecksFailed), colorize))
	if len(s.Years) > 0 {
		lines = append(lines, renderStatusLine("Years", statusInfo, strings.Join(s.Years, ", "), colorize))
	}
	lines = append(lines, renderStatusLine("Slides", statusInfo,
		fmt.Sprintf("%d read, %d labeled, %d paired", s.Slides, s.Observations, s.Staged), colorize))
	if s.Kind == history.KindExtract {
		lines = append(lines,
			renderStatusLine("Written", statusOK, fmt.Sprintf("%d (%d converted)", s.Written, s.Converted), colorize),
			renderStatusLine("Skipped (no digits)", countKind(s.SkippedNoDigit, statusInfo), strconv.Itoa(s.SkippedNoDigit), colorize),
			renderStatusLine("Decode failures", countKind(s.DecodeFailures, statusWarn), strconv.Itoa(s.DecodeFailures), colorize),
			renderStatusLine("Unverified", countKind(s.Unverified, statusError), strconv.Itoa(s.Unverified), colorize),
			renderStatusLine("Image read failures", countKind(s.ImageReadFailures, statusWarn), strconv.Itoa(s.ImageReadFailures), colorize),
		)
	}
	if s.CleanupRan {
		verb := "removed"
		if s.Cleanup.DryRun {
			verb = "would remove"
		}
		lines = append(lines, renderStatusLine("Cleanup", countKind(len(s.Cleanup.Errors), statusWarn),
			fmt.Sprintf("%s %d, %d remaining", verb, len(s.Cleanup.Removed), s.Cleanup.Remaining), colorize))
	} else {
		lines = append(lines, renderStatusLine("Cleanup", statusInfo, "skipped", colorize))
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))

	if failed := failedDecks(s.Decks); len(failed) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Deck", "Year", "Status", "Error"}, failed, nil))
	}
	if s.Cleanup.DryRun {
		for _, name := range s.Cleanup.Removed {
			fmt.Fprintf(out, "  would remove %s\n", name)
		}
	}
	for _, e := range s.Cleanup.Errors {
		fmt.Fprintf(out, "  remove %s: %v\n", e.Name, e.Error)
	}
}

func failedDecks(decks []extraction.DeckSummary) [][]string {
	var rows [][]string
	for _, d := range decks {
		if d.Status == "ok" {
			continue
		}
		msg := ""
		if d.Err != nil {
			msg = d.Err.Error()
		}
		rows = append(rows, []string{filepath.Base(d.Deck), d.Year, d.Status, msg})
	}
	return rows
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusCancelled:
		return statusWarn
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
