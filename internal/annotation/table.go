package annotation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slideset/internal/identifier"
)

// Category is the image type assigned during annotation.
type Category string

const (
	CategoryNone          Category = ""
	CategoryDermatoscopic Category = "d"
	CategoryClinical      Category = "c"
	CategoryMacro         Category = "m"
	CategoryOther         Category = "p"
)

// Categories lists the assignable categories in key order.
func Categories() []Category {
	return []Category{CategoryDermatoscopic, CategoryClinical, CategoryMacro, CategoryOther}
}

// ParseCategory maps a key to its category.
func ParseCategory(key string) (Category, bool) {
	switch c := Category(strings.ToLower(strings.TrimSpace(key))); c {
	case CategoryDermatoscopic, CategoryClinical, CategoryMacro, CategoryOther:
		return c, true
	default:
		return CategoryNone, false
	}
}

// Description returns a human readable name.
func (c Category) Description() string {
	switch c {
	case CategoryDermatoscopic:
		return "dermatoscopic"
	case CategoryClinical:
		return "clinical"
	case CategoryMacro:
		return "macro"
	case CategoryOther:
		return "other"
	default:
		return "unrated"
	}
}

// TimestampLayout formats rating timestamps.
const TimestampLayout = "2006-01-02_15-04-05"

// Record is one row of the rating table.
type Record struct {
	ImagePath string
	Category  Category
	Timestamp string
}

// Rated reports whether the row carries a category.
func (r Record) Rated() bool {
	return strings.TrimSpace(string(r.Category)) != ""
}

// Table is the ordered rating table keyed by image path.
type Table struct {
	records []Record
	index   map[string]int
}

// NewTable builds an unrated table with one row per path, in the given order.
// Duplicate paths are dropped.
func NewTable(paths []string) *Table {
	t := &Table{index: make(map[string]int, len(paths))}
	for _, p := range paths {
		_ = t.Append(Record{ImagePath: p})
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the rows in table order.
func (t *Table) Records() []Record {
	return append([]Record(nil), t.records...)
}

// Row returns row i.
func (t *Table) Row(i int) Record {
	return t.records[i]
}

// Lookup returns the row index of path.
func (t *Table) Lookup(path string) (int, bool) {
	i, ok := t.index[path]
	return i, ok
}

// Append adds a row. Paths must be unique.
func (t *Table) Append(r Record) error {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, exists := t.index[r.ImagePath]; exists {
		return fmt.Errorf("duplicate image path %q", r.ImagePath)
	}
	t.index[r.ImagePath] = len(t.records)
	t.records = append(t.records, r)
	return nil
}

func (t *Table) set(i int, category Category, timestamp string) {
	t.records[i].Category = category
	t.records[i].Timestamp = timestamp
}

// FirstUnrated returns the first unrated row in table order, ignoring rows
// in skip.
func (t *Table) FirstUnrated(skip map[int]struct{}) (int, bool) {
	for i, r := range t.records {
		if _, skipped := skip[i]; skipped {
			continue
		}
		if !r.Rated() {
			return i, true
		}
	}
	return -1, false
}

// FirstUnratedByPath returns the unrated row with the lexicographically
// smallest path, ignoring rows in skip.
func (t *Table) FirstUnratedByPath(skip map[int]struct{}) (int, bool) {
	best := -1
	for i, r := range t.records {
		if _, skipped := skip[i]; skipped || r.Rated() {
			continue
		}
		if best < 0 || r.ImagePath < t.records[best].ImagePath {
			best = i
		}
	}
	return best, best >= 0
}

// Counts tallies rows by category. Unrated rows count under CategoryNone.
func (t *Table) Counts() map[Category]int {
	counts := make(map[Category]int, 5)
	for _, r := range t.records {
		if r.Rated() {
			counts[r.Category]++
		} else {
			counts[CategoryNone]++
		}
	}
	return counts
}

// ScanImages returns the *.jpg files directly under dir as dir-joined paths,
// sorted.
func ScanImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read images dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != identifier.Extension {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
