package pptx

import (
	"archive/zip"
	"errors"
)

var (
	// ErrNotPresentation reports a file that is not a readable .pptx package.
	ErrNotPresentation = errors.New("not a presentation package")
	// ErrNoImage is returned when reading the payload of a non-picture shape.
	ErrNoImage = errors.New("shape has no image payload")
)

// Kind classifies a shape at ingestion.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "other"
	}
}

// Run is a span of text with uniform formatting.
type Run struct {
	Text string
}

// Paragraph holds the runs of one text paragraph in document order.
type Paragraph struct {
	Runs []Run
}

// Shape is one top-level entry of a slide's shape tree.
type Shape struct {
	Kind       Kind
	Name       string
	Paragraphs []Paragraph
	image      func() ([]byte, error)
}

// Image returns the picture payload. Only image shapes carry one; the read
// may fail when the package references a missing or external part.
func (s Shape) Image() ([]byte, error) {
	if s.Kind != KindImage || s.image == nil {
		return nil, ErrNoImage
	}
	return s.image()
}

// Slide is one slide with the ordinal the presentation assigned it.
type Slide struct {
	ID     int
	Part   string
	Shapes []Shape
}

// Presentation is an opened deck. Close releases the underlying archive.
type Presentation struct {
	Path   string
	Slides []Slide

	archive *zip.ReadCloser
}

// Close releases the archive backing lazily read image payloads.
func (p *Presentation) Close() error {
	if p == nil || p.archive == nil {
		return nil
	}
	err := p.archive.Close()
	p.archive = nil
	return err
}
