// Package history persists a record of every extraction and cleanup run in a
// SQLite database under the state directory.
//
// Each run stores its totals (decks, slides, observations, artifacts written,
// files removed) and one row per deck with its outcome, so `slideset runs`
// can report what changed between runs without re-reading the logs. The
// schema is versioned; a database created by a different version is rejected
// with ErrSchemaMismatch rather than migrated.
package history
