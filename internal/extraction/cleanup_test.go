package extraction_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slideset/internal/artifactstore"
	"slideset/internal/extraction"
	"slideset/internal/testsupport"
)

func seedStore(t *testing.T, names ...string) *artifactstore.Local {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(dir, name), []byte(name))
	}
	store, err := artifactstore.New(dir)
	if err != nil {
		t.Fatalf("artifactstore.New: %v", err)
	}
	return store
}

func TestReconcileRemovesOnlyOrphans(t *testing.T) {
	store := seedStore(t, "A.jpg", "B.jpg", "C.jpg")
	whitelist := map[string]struct{}{"A.jpg": {}, "B.jpg": {}}

	result, err := extraction.Reconcile(context.Background(), store, whitelist, false, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if diff := cmp.Diff([]string{"C.jpg"}, result.Removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}
	if result.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2", result.Remaining)
	}
	if diff := cmp.Diff([]string{"A.jpg", "B.jpg"}, testsupport.ListNames(t, store.Dir())); diff != "" {
		t.Fatalf("directory mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileDryRunKeepsFiles(t *testing.T) {
	store := seedStore(t, "A.jpg", "C.jpg")

	result, err := extraction.Reconcile(context.Background(), store, map[string]struct{}{"A.jpg": {}}, true, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !result.DryRun || len(result.Removed) != 1 || result.Remaining != 2 {
		t.Fatalf("unexpected dry run result: %+v", result)
	}
	if got := testsupport.ListNames(t, store.Dir()); len(got) != 2 {
		t.Fatalf("dry run must not delete, got %v", got)
	}
}

func TestReconcileEmptyWhitelistRemovesAll(t *testing.T) {
	store := seedStore(t, "x.jpg", "y.png")
	result, err := extraction.Reconcile(context.Background(), store, nil, false, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Removed) != 2 || result.Remaining != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

type stubbornStore struct {
	entries []artifactstore.Entry
}

func (s stubbornStore) List(context.Context) ([]artifactstore.Entry, error) {
	return s.entries, nil
}

func (s stubbornStore) Remove(name string) error {
	return errors.New("permission denied: " + name)
}

func TestReconcileCollectsRemovalErrors(t *testing.T) {
	store := stubbornStore{entries: []artifactstore.Entry{{Name: "a.jpg"}, {Name: "b.jpg"}}}

	result, err := extraction.Reconcile(context.Background(), store, map[string]struct{}{"a.jpg": {}}, false, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Name != "b.jpg" {
		t.Fatalf("expected collected error for b.jpg, got %+v", result.Errors)
	}
	if len(result.Removed) != 0 || result.Remaining != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
