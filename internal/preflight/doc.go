// Package preflight provides readiness checks for the filesystem paths that
// slideset depends on.
//
// These checks run in two contexts:
//   - The extraction pipeline calls RunAll before walking any deck. If a
//     required check fails the run stops before touching the image directory.
//   - The CLI "slideset status" command renders every result as a status line.
package preflight
