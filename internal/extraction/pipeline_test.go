package extraction_test

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slideset/internal/config"
	"slideset/internal/extraction"
	"slideset/internal/history"
	"slideset/internal/runlock"
	"slideset/internal/testsupport"
)

func newPipeline(t *testing.T, cfg *config.Config, opts ...extraction.Option) *extraction.Pipeline {
	t.Helper()
	p, err := extraction.New(cfg, opts...)
	if err != nil {
		t.Fatalf("extraction.New: %v", err)
	}
	return p
}

func deckPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.Paths.PresentationsDir, name)
}

func TestRunThreeSlideDeckWritesOnlyCompleteSlide(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	png := testsupport.PNG(t, 6, 6, color.NRGBA{R: 255, A: 255})
	testsupport.WritePresentation(t, deckPath(cfg, "lab_2018.pptx"),
		testsupport.Slide(testsupport.Text("Welcome")),
		testsupport.Slide(testsupport.Picture(png, "png"), testsupport.Text("12")),
		testsupport.Slide(testsupport.Picture(png, "png")),
	)

	summary, err := newPipeline(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"12_2018_257.jpg"}, testsupport.ListNames(t, cfg.Paths.ImagesDir)); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
	if summary.Slides != 3 || summary.Observations != 3 || summary.Staged != 1 || summary.Written != 1 || summary.Converted != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.Status != history.StatusCompleted || summary.RunID == "" {
		t.Fatalf("unexpected status or run id: %s %q", summary.Status, summary.RunID)
	}
	if !summary.CleanupRan || summary.Cleanup.Remaining != 1 {
		t.Fatalf("expected cleanup to keep the artifact, got %+v", summary.Cleanup)
	}
}

func TestRunCleanupRemovesOrphans(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jpeg := testsupport.JPEG(t, 4, 4, color.White)
	testsupport.WritePresentation(t, deckPath(cfg, "a_2019.pptx"),
		testsupport.Slide(testsupport.Picture(jpeg, "jpeg"), testsupport.Text("5")),
	)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.ImagesDir, "99_2001_256.jpg"), []byte("stale"))

	summary, err := newPipeline(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"99_2001_256.jpg"}, summary.Cleanup.Removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"5_2019_256.jpg"}, testsupport.ListNames(t, cfg.Paths.ImagesDir)); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLedgerKeySchemes(t *testing.T) {
	tests := []struct {
		scheme string
		want   []string
	}{
		// The label scheme protects "Fig_12_2020_256.jpg", not the written name.
		{scheme: config.LedgerKeyLabel, want: nil},
		{scheme: config.LedgerKeyDigits, want: []string{"12_2020_256.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithLedgerKey(tt.scheme))
			jpeg := testsupport.JPEG(t, 4, 4, color.Black)
			testsupport.WritePresentation(t, deckPath(cfg, "deck_2020.pptx"),
				testsupport.Slide(testsupport.Picture(jpeg, "jpeg"), testsupport.Text("Fig 12")),
			)

			summary, err := newPipeline(t, cfg).Run(context.Background())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if summary.Written != 1 {
				t.Fatalf("expected one artifact written, got %d", summary.Written)
			}
			if diff := cmp.Diff(tt.want, testsupport.ListNames(t, cfg.Paths.ImagesDir)); diff != "" {
				t.Fatalf("images after cleanup mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunSkipsBadDecksAndLockFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jpeg := testsupport.JPEG(t, 4, 4, color.White)
	testsupport.WritePresentation(t, deckPath(cfg, "b_2021.pptx"),
		testsupport.Slide(testsupport.Picture(jpeg, "jpeg"), testsupport.Text("8")),
	)
	testsupport.WriteFile(t, deckPath(cfg, "a_2020.pptx"), []byte("not a zip"))
	testsupport.WriteFile(t, deckPath(cfg, "notes.PPTX"), []byte("irrelevant"))
	testsupport.WriteFile(t, deckPath(cfg, "~$b_2021.pptx"), []byte("owner lock"))
	testsupport.WriteFile(t, deckPath(cfg, "readme.txt"), []byte("ignored"))

	summary, err := newPipeline(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var statuses []string
	for _, d := range summary.Decks {
		statuses = append(statuses, filepath.Base(d.Deck)+":"+d.Status)
	}
	want := []string{"a_2020.pptx:open_failed", "b_2021.pptx:ok", "notes.PPTX:year_missing"}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Fatalf("deck statuses mismatch (-want +got):\n%s", diff)
	}
	if summary.DecksFailed != 2 || summary.Written != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if diff := cmp.Diff([]string{"2020", "2021"}, summary.Years); diff != "" {
		t.Fatalf("years mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	jpeg := testsupport.JPEG(t, 4, 4, color.White)
	testsupport.WritePresentation(t, deckPath(cfg, "x_2017.pptx"),
		testsupport.Slide(testsupport.Picture(jpeg, "jpeg"), testsupport.Text("Intro")),
		testsupport.Slide(testsupport.Picture(jpeg, "jpeg"), testsupport.Text("4")),
	)

	summary, err := newPipeline(t, cfg, extraction.WithHistory(store)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, decks, err := store.Get(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if run.Kind != history.KindExtract || run.Status != history.StatusCompleted {
		t.Fatalf("unexpected run record: %+v", run)
	}
	if run.Written != 1 || run.SkippedNoDigit != 1 || run.Staged != 2 {
		t.Fatalf("unexpected run totals: %+v", run)
	}
	if len(decks) != 1 || decks[0].Year != "2017" || decks[0].Written != 1 {
		t.Fatalf("unexpected deck results: %+v", decks)
	}
}

func TestCleanupDryRunAndReal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jpeg := testsupport.JPEG(t, 4, 4, color.White)
	testsupport.WritePresentation(t, deckPath(cfg, "z_2015.pptx"),
		testsupport.Slide(testsupport.Picture(jpeg, "jpeg"), testsupport.Text("1")),
	)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.ImagesDir, "1_2015_256.jpg"), jpeg)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.ImagesDir, "orphan.jpg"), jpeg)

	p := newPipeline(t, cfg)
	dry, err := p.Cleanup(context.Background(), true)
	if err != nil {
		t.Fatalf("Cleanup dry run: %v", err)
	}
	if dry.Kind != history.KindCleanup || !dry.DryRun || len(dry.Cleanup.Removed) != 1 {
		t.Fatalf("unexpected dry run summary: %+v", dry)
	}
	if dry.Written != 0 {
		t.Fatal("cleanup must not write artifacts")
	}
	if got := testsupport.ListNames(t, cfg.Paths.ImagesDir); len(got) != 2 {
		t.Fatalf("dry run removed files: %v", got)
	}

	if _, err := p.Cleanup(context.Background(), false); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if diff := cmp.Diff([]string{"1_2015_256.jpg"}, testsupport.ListNames(t, cfg.Paths.ImagesDir)); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCancelledSkipsCleanup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.PresentationsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.ImagesDir, "keep.jpg"), []byte("x"))
	testsupport.WritePresentation(t, deckPath(cfg, "a_2018.pptx"), testsupport.Slide(testsupport.Text("1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := newPipeline(t, cfg).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Status != history.StatusCancelled || summary.CleanupRan {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := testsupport.ListNames(t, cfg.Paths.ImagesDir); len(got) != 1 {
		t.Fatalf("cancelled run must not clean up, got %v", got)
	}
}

func TestRunRefusesWhenLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.PresentationsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	lock, err := runlock.Acquire(cfg.LockPath(extraction.LockName))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = lock.Release() })

	if _, err := newPipeline(t, cfg).Run(context.Background()); !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunFailsPreflightWithoutPresentations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := newPipeline(t, cfg).Run(context.Background()); err == nil {
		t.Fatal("expected preflight failure for missing presentations dir")
	}
}

func TestDiscoverDecks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_2019.pptx", "A_2018.PPTX", "~$b_2019.pptx", "c.ppt", "notes.txt"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), []byte("x"))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pptx"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	decks, err := extraction.DiscoverDecks(dir)
	if err != nil {
		t.Fatalf("DiscoverDecks: %v", err)
	}
	want := []string{filepath.Join(dir, "A_2018.PPTX"), filepath.Join(dir, "b_2019.pptx")}
	if diff := cmp.Diff(want, decks); diff != "" {
		t.Fatalf("decks mismatch (-want +got):\n%s", diff)
	}
}
