// Package extraction turns a directory of slide decks into a flat directory
// of labeled JPEG artifacts.
//
// Each deck is walked slide by slide. The resolver pairs at most one picture
// with one text label per slide, the writer stores complete pairs under
// {digits}_{year}_{ordinal}.jpg, and every visited slide lands in the corpus
// ledger. After all decks are processed the cleanup reconciler removes any
// file in the images directory whose name the ledger does not whitelist.
//
// Decks, slides, and shapes are handled strictly in order on one goroutine.
// The pipeline holds the extract lock for the whole run.
package extraction
