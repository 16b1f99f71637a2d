package artifactstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"slideset/internal/fileutil"
)

// ErrInvalidName reports a name containing a path separator or traversal.
var ErrInvalidName = errors.New("invalid artifact name")

// Entry describes one regular file in the store.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Local stores artifacts as files directly under a base directory.
type Local struct {
	basePath string
}

// New returns a store rooted at basePath. The directory is created lazily on
// the first write.
func New(basePath string) (*Local, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("artifact store path is required")
	}
	return &Local{basePath: basePath}, nil
}

// Dir returns the base directory.
func (s *Local) Dir() string {
	return s.basePath
}

// Path returns the full path for name.
func (s *Local) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// Write replaces name with data through a temp file and rename, so a reader
// never sees a partial artifact.
func (s *Local) Write(_ context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present as a regular file.
func (s *Local) Exists(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	return fileutil.Exists(s.Path(name))
}

// List returns the regular files in the store sorted by name. A missing
// directory yields an empty list.
func (s *Local) List(_ context.Context) ([]Entry, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove deletes name. Removing a missing file is not an error.
func (s *Local) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", name, err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
