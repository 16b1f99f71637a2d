package extraction

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Progress receives deck and slide advancement from the pipeline.
type Progress interface {
	Start(decks int)
	Slide(deck string, done, total int)
	DeckDone()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)              {}
func (nopProgress) Slide(string, int, int) {}
func (nopProgress) DeckDone()              {}
func (nopProgress) Finish()                {}

// NopProgress discards progress updates.
func NopProgress() Progress {
	return nopProgress{}
}

// NewTerminalProgress returns a progress bar on w when w is a terminal and a
// no-op otherwise.
func NewTerminalProgress(w io.Writer) Progress {
	f, ok := w.(*os.File)
	if !ok {
		return NopProgress()
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return NopProgress()
	}
	return &barProgress{w: w}
}

type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(decks int) {
	p.bar = progressbar.NewOptions(decks,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("decks"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
	)
}

func (p *barProgress) Slide(deck string, done, total int) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("%s slide %d/%d", filepath.Base(deck), done, total))
}

func (p *barProgress) DeckDone() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *barProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
