// Package annotation implements the manual image-type labeling session.
//
// The rating table holds one row per artifact image with its category
// (d, c, m, p, or empty for unrated) and the time it was rated. A Session
// walks unrated rows one at a time; category keys change a pending value,
// a commit stamps the focused row and persists the whole table, and exit
// persists and stops. The table is stored as a pandas-compatible CSV so
// existing annotation files keep loading.
package annotation
