package annotateview

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"slideset/internal/annotation"
	"slideset/internal/imaging"
)

// ImageLoader returns the image at path scaled to exactly width by height.
type ImageLoader func(path string, width, height int) (image.Image, error)

// Options configures the view.
type Options struct {
	PollInterval  time.Duration
	CommitPause   time.Duration
	DisplayWidth  int
	DisplayHeight int
	Keys          KeyMap
	Loader        ImageLoader
	Now           func() time.Time
}

type tickMsg time.Time

// Model is the bubbletea model driving an annotation session.
type Model struct {
	session *annotation.Session
	opts    Options

	width  int
	height int

	image       image.Image
	imagePath   string
	frame       string
	pausedUntil time.Time
	saving      bool
	err         error
}

// New returns a model for a started session.
func New(session *annotation.Session, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 33 * time.Millisecond
	}
	if opts.CommitPause < 0 {
		opts.CommitPause = 0
	}
	if opts.DisplayWidth <= 0 || opts.DisplayHeight <= 0 {
		opts.DisplayWidth, opts.DisplayHeight = 1000, 680
	}
	if opts.Keys.Commit.Keys() == nil {
		opts.Keys = DefaultKeyMap()
	}
	if opts.Loader == nil {
		opts.Loader = imaging.LoadForDisplay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := Model{session: session, opts: opts, width: 80, height: 24}
	m.loadCurrent()
	return m
}

// Err returns the error that stopped the session, if any.
func (m Model) Err() error {
	return m.err
}

// Session returns the underlying session.
func (m Model) Session() *annotation.Session {
	return m.session
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the poll tick, or quits when there is nothing to rate.
func (m Model) Init() tea.Cmd {
	if m.session.State() == annotation.StateDone {
		return tea.Quit
	}
	return m.tick()
}

// Update applies one message as one synchronous session transition.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.refreshFrame()
		return m, nil
	case tickMsg:
		if m.session.State() == annotation.StateDone {
			return m, tea.Quit
		}
		m.session.Idle()
		if m.saving && !m.paused() {
			m.saving = false
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) paused() bool {
	return m.opts.Now().Before(m.pausedUntil)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.opts.Keys
	if key.Matches(msg, keys.Exit) {
		if err := m.session.Exit(); err != nil {
			m.err = err
		}
		return m, tea.Quit
	}
	if m.session.State() == annotation.StateDone || m.paused() {
		return m, nil
	}

	for _, cb := range keys.categoryBindings() {
		if key.Matches(msg, cb.binding) {
			m.fail(m.session.Select(cb.category))
			return m, nil
		}
	}
	switch {
	case key.Matches(msg, keys.Clear):
		m.fail(m.session.Clear())
	case key.Matches(msg, keys.Commit):
		if err := m.session.Commit(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.pausedUntil = m.opts.Now().Add(m.opts.CommitPause)
		m.saving = m.opts.CommitPause > 0
		m.loadCurrent()
		if m.err != nil || m.session.State() == annotation.StateDone {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) fail(err error) {
	if err != nil && !errors.Is(err, annotation.ErrSessionDone) {
		m.err = err
	}
}

// loadCurrent loads the focused image, skipping rows whose image cannot be
// loaded until one succeeds or the session ends.
func (m *Model) loadCurrent() {
	for {
		rec, ok := m.session.Current()
		if !ok {
			m.image, m.imagePath, m.frame = nil, "", ""
			return
		}
		if rec.ImagePath == m.imagePath && m.image != nil {
			return
		}
		img, err := m.opts.Loader(rec.ImagePath, m.opts.DisplayWidth, m.opts.DisplayHeight)
		if err == nil {
			m.image, m.imagePath = img, rec.ImagePath
			m.refreshFrame()
			return
		}
		if serr := m.session.Skip(err); serr != nil {
			m.err = serr
			return
		}
	}
}

// Run drives session in a full-screen terminal program until the session ends
// or ctx is cancelled.
func Run(ctx context.Context, session *annotation.Session, opts Options) error {
	model := New(session, opts)
	if model.err != nil {
		return model.err
	}
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return session.Exit()
		}
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
