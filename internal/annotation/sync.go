package annotation

import (
	"slideset/internal/fileutil"
)

// SyncResult reports how a table was reconciled against the images directory.
type SyncResult struct {
	Added   []string
	Missing []string
}

// Sync appends unrated rows for images not yet in the table, in path order,
// and lists rows whose image file no longer exists. Rows are never removed.
func Sync(table *Table, imagesDir string) (SyncResult, error) {
	paths, err := ScanImages(imagesDir)
	if err != nil {
		return SyncResult{}, err
	}
	var result SyncResult
	for _, p := range paths {
		if _, ok := table.Lookup(p); ok {
			continue
		}
		if err := table.Append(Record{ImagePath: p}); err != nil {
			return result, err
		}
		result.Added = append(result.Added, p)
	}
	for _, r := range table.records {
		exists, err := fileutil.Exists(r.ImagePath)
		if err != nil || !exists {
			result.Missing = append(result.Missing, r.ImagePath)
		}
	}
	return result, nil
}
