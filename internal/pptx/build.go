package pptx

// NewPresentation assembles an in-memory presentation, mainly for callers
// that exercise slide handling without a file on disk.
func NewPresentation(path string, slides ...Slide) *Presentation {
	return &Presentation{Path: path, Slides: slides}
}

// NewTextShape returns a text shape with one paragraph per argument slice.
func NewTextShape(paragraphs ...[]string) Shape {
	shape := Shape{Kind: KindText}
	for _, runs := range paragraphs {
		p := Paragraph{}
		for _, text := range runs {
			p.Runs = append(p.Runs, Run{Text: text})
		}
		shape.Paragraphs = append(shape.Paragraphs, p)
	}
	return shape
}

// NewPicture returns an image shape whose payload is data.
func NewPicture(data []byte) Shape {
	payload := append([]byte(nil), data...)
	return Shape{Kind: KindImage, image: func() ([]byte, error) {
		return payload, nil
	}}
}

// NewBrokenPicture returns an image shape whose payload read fails with err.
func NewBrokenPicture(err error) Shape {
	return Shape{Kind: KindImage, image: func() ([]byte, error) {
		return nil, err
	}}
}

// NewOtherShape returns a shape that is neither text nor picture.
func NewOtherShape(name string) Shape {
	return Shape{Kind: KindOther, Name: name}
}
