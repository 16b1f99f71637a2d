package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slideset/internal/annotateview"
	"slideset/internal/annotation"
	"slideset/internal/config"
	"slideset/internal/logging"
	"slideset/internal/runlock"
)

// annotateLockName guards the rating table against concurrent writers.
const annotateLockName = "annotate"

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate",
		Short: "Rate extracted images one at a time",
		Long: "Show each unrated image and record its type with a single key:\n" +
			"d dermatoscopic, c clinical, m macro, p other. Enter or space commits,\n" +
			"backspace clears, esc saves and exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger("annotate", true)
			if err != nil {
				return err
			}

			lock, err := acquireAnnotateLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Release()

			store := annotation.NewCSVStore(cfg.Paths.AnnotationsPath)
			table, created, err := annotation.LoadOrCreate(store, cfg.Paths.ImagesDir)
			if err != nil {
				return fmt.Errorf("load annotation table: %w", err)
			}
			if created {
				logger.Info("annotation table created",
					logging.String(logging.FieldEventType, "table_created"),
					logging.String("path", store.Path()),
					logging.Int("rows", table.Len()),
				)
			}

			session := annotation.NewSession(table, store,
				annotation.WithLogger(logging.NewComponentLogger(logger, "annotation")))
			if err := session.Start(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if session.State() == annotation.StateDone {
				fmt.Fprintf(out, "Nothing to annotate: all %d images are rated\n", table.Len())
				return nil
			}

			err = annotateview.Run(cmd.Context(), session, annotateview.Options{
				PollInterval:  cfg.PollInterval(),
				CommitPause:   cfg.CommitPause(),
				DisplayWidth:  cfg.Annotation.DisplayWidth,
				DisplayHeight: cfg.Annotation.DisplayHeight,
			})
			counts := table.Counts()
			fmt.Fprintf(out, "Rated %d images this session; %d of %d remain unrated\n",
				session.Commits(), counts[annotation.CategoryNone], table.Len())
			if n := session.Skipped(); n > 0 {
				fmt.Fprintf(out, "Skipped %d unreadable images (see log)\n", n)
			}
			return err
		},
	}
}

func newAnnotationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotations",
		Short: "Inspect and maintain the rating table",
	}
	cmd.AddCommand(newAnnotationsStatusCommand(ctx))
	cmd.AddCommand(newAnnotationsSyncCommand(ctx))
	return cmd
}

func newAnnotationsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show rating progress by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			table, err := annotation.NewCSVStore(cfg.Paths.AnnotationsPath).Load()
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No annotation table at %s; run `slideset annotate` to create one\n", cfg.Paths.AnnotationsPath)
				return nil
			}
			if err != nil {
				return err
			}
			printCategoryCounts(out, table)
			return nil
		},
	}
}

func newAnnotationsSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Add newly extracted images to the rating table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := acquireAnnotateLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Release()

			store := annotation.NewCSVStore(cfg.Paths.AnnotationsPath)
			table, created, err := annotation.LoadOrCreate(store, cfg.Paths.ImagesDir)
			if err != nil {
				return fmt.Errorf("load annotation table: %w", err)
			}
			result, err := annotation.Sync(table, cfg.Paths.ImagesDir)
			if err != nil {
				return err
			}
			if err := store.Save(table); err != nil {
				return err
			}

			// A freshly created table already holds every image.
			added := len(result.Added)
			if created {
				added = table.Len()
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added %d images; table has %d rows\n", added, table.Len())
			if len(result.Missing) > 0 {
				fmt.Fprintf(out, "%d rows point at missing images:\n", len(result.Missing))
				for _, p := range result.Missing {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}
			return nil
		},
	}
}

func acquireAnnotateLock(cfg *config.Config) (*runlock.Lock, error) {
	lock, err := runlock.Acquire(cfg.LockPath(annotateLockName))
	if errors.Is(err, runlock.ErrLocked) {
		return nil, fmt.Errorf("another annotation session is running: %w", err)
	}
	return lock, err
}

func printCategoryCounts(out io.Writer, table *annotation.Table) {
	title := cases.Title(language.English)
	counts := table.Counts()
	rows := make([][]string, 0, len(annotation.Categories())+1)
	for _, c := range annotation.Categories() {
		rows = append(rows, []string{string(c), title.String(c.Description()), strconv.Itoa(counts[c])})
	}
	rows = append(rows, []string{"", title.String(annotation.CategoryNone.Description()), strconv.Itoa(counts[annotation.CategoryNone])})
	fmt.Fprintln(out, renderTable([]string{"Key", "Category", "Images"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	fmt.Fprintf(out, "%d of %d images rated\n", table.Len()-counts[annotation.CategoryNone], table.Len())
}
