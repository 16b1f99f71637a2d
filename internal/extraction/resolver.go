package extraction

import (
	"log/slog"
	"strings"

	"slideset/internal/logging"
	"slideset/internal/pptx"
)

// LabelStrategy decides which text run becomes the slide label.
type LabelStrategy string

const (
	// LabelLast lets every run overwrite the label, so the final run wins.
	LabelLast LabelStrategy = "last"
	// LabelFirst keeps the first non-empty run.
	LabelFirst LabelStrategy = "first"
)

// SlidePair is the label and image resolved from one slide.
type SlidePair struct {
	Label string
	Image []byte
	// ImageReadFailures counts picture shapes whose payload could not be read.
	ImageReadFailures int
}

// Writable reports whether both halves of the pair are present.
func (p SlidePair) Writable() bool {
	return strings.TrimSpace(p.Label) != "" && len(p.Image) > 0
}

// Resolver extracts a SlidePair from the shapes of a single slide.
type Resolver struct {
	Strategy LabelStrategy
	Logger   *slog.Logger
}

// Resolve scans slide shapes in order. State never carries over between
// slides.
func (r Resolver) Resolve(slide pptx.Slide) SlidePair {
	var (
		pair     SlidePair
		labelSet bool
	)
	for _, shape := range slide.Shapes {
		switch shape.Kind {
		case pptx.KindImage:
			data, err := shape.Image()
			if err != nil {
				pair.ImageReadFailures++
				logging.WarnWithContext(r.Logger, "image payload unreadable; slide kept without image", "image_read_failed",
					logging.Int(logging.FieldSlideID, slide.ID),
					logging.String("shape", shape.Name),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "re-save the deck so the picture is embedded"),
					logging.String(logging.FieldImpact, "no artifact for this slide"),
				)
				pair.Image = nil
				continue
			}
			pair.Image = data
		case pptx.KindText:
			for _, para := range shape.Paragraphs {
				for _, run := range para.Runs {
					if r.Strategy == LabelFirst {
						if !labelSet && strings.TrimSpace(run.Text) != "" {
							pair.Label = run.Text
							labelSet = true
						}
						continue
					}
					pair.Label = run.Text
				}
			}
		}
	}
	return pair
}
