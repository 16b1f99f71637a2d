package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"slideset/internal/identifier"
	"slideset/internal/logging"
	"slideset/internal/pptx"
)

// DeckErrorKind classifies why a deck was skipped.
type DeckErrorKind string

const (
	DeckYearMissing DeckErrorKind = "year_missing"
	DeckOpenFailed  DeckErrorKind = "open_failed"
)

// DeckError reports a deck that produced no output.
type DeckError struct {
	Deck string
	Kind DeckErrorKind
	Err  error
}

func (e *DeckError) Error() string {
	return fmt.Sprintf("deck %s: %s: %v", e.Deck, e.Kind, e.Err)
}

func (e *DeckError) Unwrap() error {
	return e.Err
}

// DocumentReader opens presentation files.
type DocumentReader interface {
	Open(path string) (*pptx.Presentation, error)
}

// DocumentReaderFunc adapts a function to DocumentReader.
type DocumentReaderFunc func(path string) (*pptx.Presentation, error)

// Open calls f(path).
func (f DocumentReaderFunc) Open(path string) (*pptx.Presentation, error) {
	return f(path)
}

// Observation is one visited slide, recorded whether or not it produced a
// writable pair.
type Observation struct {
	Deck     string
	Label    string
	Year     string
	Ordinal  int
	HasImage bool
}

// StagedPair is a writable slide waiting for the artifact writer.
type StagedPair struct {
	Deck    string
	Label   string
	Year    string
	Ordinal int
	Image   []byte
}

// DeckResult summarizes one walked deck.
type DeckResult struct {
	Deck              string
	Year              string
	Slides            int
	Observations      []Observation
	Staged            []StagedPair
	ImageReadFailures int
}

// SlideFunc is called after each slide with the 1-based position and the
// slide count of the current deck.
type SlideFunc func(done, total int)

// Walker visits every slide of a deck.
type Walker struct {
	reader   DocumentReader
	resolver Resolver
	logger   *slog.Logger
	onSlide  SlideFunc
}

// NewWalker returns a walker reading decks with reader.
func NewWalker(reader DocumentReader, strategy LabelStrategy, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = logging.NewNop()
	}
	if reader == nil {
		reader = DocumentReaderFunc(pptx.Open)
	}
	return &Walker{
		reader:   reader,
		resolver: Resolver{Strategy: strategy, Logger: logger},
		logger:   logger,
	}
}

// OnSlide registers a per-slide progress callback.
func (w *Walker) OnSlide(fn SlideFunc) {
	w.onSlide = fn
}

// Walk processes one deck. Year and open failures return a *DeckError and no
// partial result. Context cancellation is checked between slides.
func (w *Walker) Walk(ctx context.Context, deckPath string) (DeckResult, error) {
	year, err := identifier.YearFromPath(deckPath)
	if err != nil {
		return DeckResult{}, &DeckError{Deck: deckPath, Kind: DeckYearMissing, Err: err}
	}

	pres, err := w.reader.Open(deckPath)
	if err != nil {
		return DeckResult{}, &DeckError{Deck: deckPath, Kind: DeckOpenFailed, Err: err}
	}
	defer func() {
		if cerr := pres.Close(); cerr != nil {
			w.logger.Debug("deck close failed", logging.String(logging.FieldDeck, deckPath), logging.Error(cerr))
		}
	}()

	logger := w.logger.With(logging.String(logging.FieldDeck, deckPath))
	resolver := w.resolver
	resolver.Logger = logger

	result := DeckResult{
		Deck:         deckPath,
		Year:         year,
		Slides:       len(pres.Slides),
		Observations: make([]Observation, 0, len(pres.Slides)),
	}
	for i, slide := range pres.Slides {
		if err := ctx.Err(); err != nil {
			return DeckResult{}, err
		}
		pair := resolver.Resolve(slide)
		result.ImageReadFailures += pair.ImageReadFailures

		result.Observations = append(result.Observations, Observation{
			Deck:     deckPath,
			Label:    pair.Label,
			Year:     year,
			Ordinal:  slide.ID,
			HasImage: len(pair.Image) > 0,
		})
		if pair.Writable() {
			result.Staged = append(result.Staged, StagedPair{
				Deck:    deckPath,
				Label:   pair.Label,
				Year:    year,
				Ordinal: slide.ID,
				Image:   pair.Image,
			})
		}
		logger.Debug("slide resolved",
			logging.Int(logging.FieldSlideID, slide.ID),
			logging.String("label", strings.TrimSpace(pair.Label)),
			logging.Bool("has_image", len(pair.Image) > 0),
			logging.Bool("staged", pair.Writable()),
		)
		if w.onSlide != nil {
			w.onSlide(i+1, len(pres.Slides))
		}
	}
	return result, nil
}

// IsDeckError reports whether err is a *DeckError and returns it.
func IsDeckError(err error) (*DeckError, bool) {
	var deckErr *DeckError
	if errors.As(err, &deckErr) {
		return deckErr, true
	}
	return nil, false
}
