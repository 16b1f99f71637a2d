package annotation_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slideset/internal/annotation"
	"slideset/internal/testsupport"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		key    string
		want   annotation.Category
		wantOK bool
	}{
		{key: "d", want: annotation.CategoryDermatoscopic, wantOK: true},
		{key: "C", want: annotation.CategoryClinical, wantOK: true},
		{key: "m", want: annotation.CategoryMacro, wantOK: true},
		{key: "p", want: annotation.CategoryOther, wantOK: true},
		{key: "x"},
		{key: ""},
	}
	for _, tt := range tests {
		got, ok := annotation.ParseCategory(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseCategory(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFirstUnratedOrders(t *testing.T) {
	table := annotation.NewTable(nil)
	for _, r := range []annotation.Record{
		{ImagePath: "images/c.jpg"},
		{ImagePath: "images/a.jpg", Category: "d"},
		{ImagePath: "images/b.jpg"},
	} {
		if err := table.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if idx, ok := table.FirstUnrated(nil); !ok || idx != 0 {
		t.Fatalf("FirstUnrated = %d, %v; want 0", idx, ok)
	}
	if idx, ok := table.FirstUnratedByPath(nil); !ok || idx != 2 {
		t.Fatalf("FirstUnratedByPath = %d, %v; want 2", idx, ok)
	}
	if idx, ok := table.FirstUnratedByPath(map[int]struct{}{2: {}}); !ok || idx != 0 {
		t.Fatalf("FirstUnratedByPath with skip = %d, %v; want 0", idx, ok)
	}
	if err := table.Append(annotation.Record{ImagePath: "images/a.jpg"}); err == nil {
		t.Fatal("expected duplicate path error")
	}

	want := map[annotation.Category]int{annotation.CategoryNone: 2, annotation.CategoryDermatoscopic: 1}
	if diff := cmp.Diff(want, table.Counts()); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestScanImagesOnlyJPG(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.jpg", "c.png", "d.JPG"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), []byte("x"))
	}
	got, err := annotation.ScanImages(dir)
	if err != nil {
		t.Fatalf("ScanImages: %v", err)
	}
	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncAddsAndReportsMissing(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.jpg"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "c.jpg"), []byte("x"))

	table := annotation.NewTable([]string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "gone.jpg")})
	result, err := annotation.Sync(table, dir)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "c.jpg")}, result.Added); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "gone.jpg")}, result.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 3 {
		t.Fatalf("sync must never delete rows, got %d", table.Len())
	}
}
