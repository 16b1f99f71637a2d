// Package annotateview is the terminal front end of the annotation session.
//
// A bubbletea program shows the focused image with half-block characters,
// draws the pending category in an indicator box, and maps keys onto
// session transitions: d, c, m, p select a category, backspace or delete
// clears it, enter or space commits, and esc exits. A poll tick drives the
// idle transition and keys are ignored for a short pause after each commit.
package annotateview
