// Package pptx reads the slide structure of Office Open XML presentations.
//
// Open follows the package relationships from the root to the presentation
// part, resolves every slide listed in p:sldIdLst, and classifies the top-level
// shapes of each slide tree once: text shapes (p:sp) expose paragraphs and
// runs, picture shapes (p:pic) expose a lazily read image payload, and all
// other shapes are kept as opaque placeholders. Structural problems surface
// from Open; a broken image reference only surfaces when its payload is read.
package pptx
