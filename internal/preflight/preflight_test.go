package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"slideset/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckReadableDirectory_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableDirectory("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "annotations.csv")
	if err := os.WriteFile(existing, []byte(",impath\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if r := CheckWritableFile("table", existing); !r.Passed {
		t.Fatalf("expected existing file to pass: %s", r.Detail)
	}
	if r := CheckWritableFile("table", filepath.Join(dir, "new.csv")); !r.Passed {
		t.Fatalf("expected creatable file to pass: %s", r.Detail)
	}
	if r := CheckWritableFile("table", filepath.Join(dir, "missing", "new.csv")); r.Passed {
		t.Fatal("expected failure when parent directory is missing")
	}
	if r := CheckWritableFile("table", dir); r.Passed {
		t.Fatal("expected failure for directory path")
	}
}

func TestRunAllReportsMissingPresentations(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.PresentationsDir = filepath.Join(base, "presentations")
	cfg.Paths.ImagesDir = filepath.Join(base, "images")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = base
	cfg.Paths.AnnotationsPath = filepath.Join(base, "missing", "annotations.csv")
	if err := os.MkdirAll(cfg.Paths.ImagesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	failed := Failures(results)
	if len(failed) != 1 || failed[0].Name != "Presentations directory" {
		t.Fatalf("expected only presentations failure, got %+v", failed)
	}

	if err := os.MkdirAll(cfg.Paths.PresentationsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if failed := Failures(RunAll(&cfg)); len(failed) != 0 {
		t.Fatalf("expected no required failures, got %+v", failed)
	}
}
