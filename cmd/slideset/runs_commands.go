package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"slideset/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent extraction and cleanup runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					shortID(r.ID),
					string(r.Kind),
					runStatusLabel(r),
					r.StartedAt.Local().Format(time.DateTime),
					formatDuration(r.Duration()),
					strconv.Itoa(r.DecksTotal),
					strconv.Itoa(r.Written),
					strconv.Itoa(r.Removed),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Kind", "Status", "Started", "Duration", "Decks", "Written", "Removed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.AddCommand(newRunsShowCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its per-deck results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, decks, err := store.Get(cmd.Context(), args[0])
			switch {
			case errors.Is(err, history.ErrNotFound):
				return fmt.Errorf("no run matches %q", args[0])
			case errors.Is(err, history.ErrAmbiguous):
				return fmt.Errorf("%q matches more than one run; use a longer prefix", args[0])
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("Run "+run.ID, colorize)
			lines = append(lines,
				renderStatusLine("Kind", statusInfo, string(run.Kind), colorize),
				renderStatusLine("Status", runStatusKind(run.Status), runStatusLabel(run), colorize),
				renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize),
				renderStatusLine("Duration", statusInfo, formatDuration(run.Duration()), colorize),
				renderStatusLine("Decks", countKind(run.DecksFailed, statusWarn), fmt.Sprintf("%d total, %d failed", run.DecksTotal, run.DecksFailed), colorize),
				renderStatusLine("Slides", statusInfo, fmt.Sprintf("%d read, %d labeled, %d paired", run.Slides, run.Observations, run.Staged), colorize),
				renderStatusLine("Written", statusOK, strconv.Itoa(run.Written), colorize),
				renderStatusLine("Skipped (no digits)", countKind(run.SkippedNoDigit, statusInfo), strconv.Itoa(run.SkippedNoDigit), colorize),
				renderStatusLine("Decode failures", countKind(run.DecodeFailures, statusWarn), strconv.Itoa(run.DecodeFailures), colorize),
				renderStatusLine("Unverified", countKind(run.Unverified, statusError), strconv.Itoa(run.Unverified), colorize),
				renderStatusLine("Removed", statusInfo, fmt.Sprintf("%d (%d remaining)", run.Removed, run.Remaining), colorize),
			)
			if run.ErrorMessage != "" {
				lines = append(lines, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			if len(decks) > 0 {
				rows := make([][]string, 0, len(decks))
				for _, d := range decks {
					rows = append(rows, []string{
						filepath.Base(d.DeckPath), d.Year, d.Status,
						strconv.Itoa(d.Slides), strconv.Itoa(d.Staged), strconv.Itoa(d.Written),
						d.ErrorMessage,
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Deck", "Year", "Status", "Slides", "Paired", "Written", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
			}
			return nil
		},
	}
}

func openHistoryForRead(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return store, nil
}

func runStatusLabel(r history.Run) string {
	if r.DryRun {
		return string(r.Status) + " (dry run)"
	}
	return string(r.Status)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(10 * time.Millisecond).String()
}
