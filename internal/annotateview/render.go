package annotateview

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slideset/internal/annotation"
	"slideset/internal/imaging"
)

const (
	halfBlock    = "▀"
	chromeHeight = 5
)

var upper = cases.Upper(language.Und)

var indicatorStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("42")).
	Foreground(lipgloss.Color("42")).
	Bold(true).
	Width(3).
	Align(lipgloss.Center)

var (
	pathStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	savingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// View renders the indicator, the image, and the key help.
func (m Model) View() string {
	if m.session.State() == annotation.StateDone {
		if m.err != nil {
			return errorStyle.Render("error: "+m.err.Error()) + "\n"
		}
		return "All done!\n"
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.indicator(), " ", m.info()))
	b.WriteString("\n")
	b.WriteString(m.frame)
	b.WriteString(m.help())
	return b.String()
}

func (m Model) indicator() string {
	return indicatorStyle.Render(upper.String(string(m.session.Pending())))
}

func (m Model) info() string {
	rec, _ := m.session.Current()
	table := m.session.Table()
	rated := table.Len() - table.Counts()[annotation.CategoryNone]

	lines := []string{
		pathStyle.Render(filepath.Base(rec.ImagePath)),
		mutedStyle.Render(fmt.Sprintf("%d of %d rated · %s", rated, table.Len(), m.session.Pending().Description())),
	}
	switch {
	case m.err != nil:
		lines = append(lines, errorStyle.Render(m.err.Error()))
	case m.saving:
		lines = append(lines, savingStyle.Render("Saving..."))
	default:
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) help() string {
	parts := make([]string, 0, 7)
	for _, binding := range m.opts.Keys.help() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

// refreshFrame re-renders the cached image frame for the current size.
func (m *Model) refreshFrame() {
	if m.image == nil {
		m.frame = ""
		return
	}
	cols, rows := fitCells(m.opts.DisplayWidth, m.opts.DisplayHeight, m.width, m.height-chromeHeight)
	if cols == 0 || rows == 0 {
		m.frame = ""
		return
	}
	m.frame = renderHalfBlocks(imaging.Resize(m.image, cols, rows*2))
}

// fitCells returns the largest cell grid with the display aspect ratio that
// fits maxCols by maxRows. Each cell holds two vertical pixels.
func fitCells(displayW, displayH, maxCols, maxRows int) (int, int) {
	if displayW <= 0 || displayH <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols := maxCols
	pixelRows := cols * displayH / displayW
	if pixelRows > maxRows*2 {
		pixelRows = maxRows * 2
		cols = pixelRows * displayW / displayH
	}
	return cols, pixelRows / 2
}

func renderHalfBlocks(img image.Image) string {
	bounds := img.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hexColor(img.At(x, y+1)))
			}
			b.WriteString(style.Render(halfBlock))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
