package annotation

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"slideset/internal/fileutil"
)

// Column names of the rating table. The first, unnamed column is the row
// label, which repeats the image path.
const (
	columnImagePath = "impath"
	columnCategory  = "rating_type"
	columnTimestamp = "rating_date"
)

// ErrMalformedTable reports a rating table that cannot be parsed.
var ErrMalformedTable = errors.New("malformed annotation table")

// CSVStore persists a Table as a pandas-compatible CSV file.
type CSVStore struct {
	path string
}

// NewCSVStore returns a store for path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the CSV location.
func (s *CSVStore) Path() string {
	return s.path
}

// Exists reports whether the table file is present.
func (s *CSVStore) Exists() (bool, error) {
	return fileutil.Exists(s.path)
}

// Load reads the table. Columns are matched by header name; missing values
// (pandas NaN) load as empty strings.
func (s *CSVStore) Load() (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open annotation table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrMalformedTable, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	pathCol, ok := cols[columnImagePath]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q column", ErrMalformedTable, columnImagePath)
	}
	categoryCol, hasCategory := cols[columnCategory]
	timestampCol, hasTimestamp := cols[columnTimestamp]

	table := NewTable(nil)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		field := func(i int, present bool) string {
			if !present || i >= len(row) {
				return ""
			}
			return row[i]
		}
		record := Record{
			ImagePath: field(pathCol, true),
			Category:  Category(strings.TrimSpace(field(categoryCol, hasCategory))),
			Timestamp: field(timestampCol, hasTimestamp),
		}
		if record.ImagePath == "" && len(row) > 0 {
			record.ImagePath = row[0]
		}
		if err := table.Append(record); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
	}
	return table, nil
}

// Save overwrites the file with table through write-to-temp and rename.
func (s *CSVStore) Save(table *Table) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"", columnImagePath, columnCategory, columnTimestamp}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, r := range table.records {
		if err := w.Write([]string{r.ImagePath, r.ImagePath, string(r.Category), r.Timestamp}); err != nil {
			return fmt.Errorf("encode row %s: %w", r.ImagePath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode annotation table: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save annotation table: %w", err)
	}
	return nil
}

// LoadOrCreate loads the table at the store path, or builds an unrated table
// from the images in imagesDir when no file exists. created reports the
// latter; the new table is not saved.
func LoadOrCreate(store *CSVStore, imagesDir string) (table *Table, created bool, err error) {
	table, err = store.Load()
	if err == nil {
		return table, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	paths, err := ScanImages(imagesDir)
	if err != nil {
		return nil, false, err
	}
	return NewTable(paths), true, nil
}
