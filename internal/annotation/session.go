package annotation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"slideset/internal/logging"
)

// State is the session lifecycle state.
type State int

const (
	StateAwaitingInput State = iota
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "done"
	}
	return "awaiting_input"
}

// ErrSessionDone is returned by transitions attempted after the session ended.
var ErrSessionDone = errors.New("annotation session is done")

// Persister saves the full table.
type Persister interface {
	Save(table *Table) error
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock sets the timestamp source for commits.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is the annotation state machine over a table.
type Session struct {
	table   *Table
	store   Persister
	now     func() time.Time
	logger  *slog.Logger
	state   State
	current int
	pending Category
	skipped map[int]struct{}
	commits int
}

// NewSession returns a session over table persisted through store. Call
// Start before any other transition.
func NewSession(table *Table, store Persister, opts ...SessionOption) *Session {
	s := &Session{
		table:   table,
		store:   store,
		now:     time.Now,
		logger:  logging.NewNop(),
		state:   StateDone,
		current: -1,
		skipped: make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start persists the table once and focuses the unrated row with the
// smallest path. Without unrated rows the session is immediately done.
func (s *Session) Start() error {
	if err := s.persist(); err != nil {
		return err
	}
	idx, ok := s.table.FirstUnratedByPath(s.skipped)
	if !ok {
		s.state = StateDone
		s.current = -1
		s.logger.Info("no unrated images", logging.String(logging.FieldEventType, "annotation_nothing_to_do"))
		return nil
	}
	s.focus(idx)
	s.state = StateAwaitingInput
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Current returns the focused row.
func (s *Session) Current() (Record, bool) {
	if s.state != StateAwaitingInput || s.current < 0 {
		return Record{}, false
	}
	return s.table.Row(s.current), true
}

// Pending returns the category the next commit will store.
func (s *Session) Pending() Category {
	return s.pending
}

// Commits returns the number of commits in this session.
func (s *Session) Commits() int {
	return s.commits
}

// Skipped returns the number of rows skipped in this session.
func (s *Session) Skipped() int {
	return len(s.skipped)
}

// Table returns the underlying table.
func (s *Session) Table() *Table {
	return s.table
}

// Select sets the pending category. Nothing is persisted.
func (s *Session) Select(c Category) error {
	if s.state == StateDone {
		return ErrSessionDone
	}
	if _, ok := ParseCategory(string(c)); !ok {
		return fmt.Errorf("unknown category %q", c)
	}
	s.pending = c
	return nil
}

// Clear empties the pending category.
func (s *Session) Clear() error {
	if s.state == StateDone {
		return ErrSessionDone
	}
	s.pending = CategoryNone
	return nil
}

// Idle is the no-key transition; it never changes state.
func (s *Session) Idle() {}

// Commit stamps the focused row with the pending category and the current
// time, persists, and advances to the first unrated row in table order.
// Committing an empty category leaves the row unrated, so it may be focused
// again.
func (s *Session) Commit() error {
	if s.state == StateDone {
		return ErrSessionDone
	}
	row := s.table.Row(s.current)
	s.table.set(s.current, s.pending, s.now().Format(TimestampLayout))
	s.commits++
	if err := s.persist(); err != nil {
		return err
	}
	s.logger.Debug("annotation committed",
		logging.String(logging.FieldImagePath, row.ImagePath),
		logging.String("category", string(s.pending)),
		logging.String(logging.FieldEventType, "annotation_committed"),
	)
	return s.advance()
}

// Skip leaves the focused row untouched, remembers it for the rest of the
// session, and advances.
func (s *Session) Skip(reason error) error {
	if s.state == StateDone {
		return ErrSessionDone
	}
	row := s.table.Row(s.current)
	s.skipped[s.current] = struct{}{}
	logging.WarnWithContext(s.logger, "image skipped", "annotation_image_skipped",
		logging.String(logging.FieldImagePath, row.ImagePath),
		logging.Error(reason),
		logging.String(logging.FieldErrorHint, "check that the image file exists and decodes"),
		logging.String(logging.FieldImpact, "image stays unrated"),
	)
	return s.advance()
}

// Exit persists the table and ends the session.
func (s *Session) Exit() error {
	if s.state == StateDone {
		return nil
	}
	s.state = StateDone
	s.current = -1
	return s.persist()
}

func (s *Session) advance() error {
	idx, ok := s.table.FirstUnrated(s.skipped)
	if ok {
		s.focus(idx)
		return nil
	}
	s.state = StateDone
	s.current = -1
	s.logger.Info("all images rated",
		logging.String(logging.FieldEventType, "annotation_complete"),
		logging.Int("commits", s.commits),
	)
	return s.persist()
}

func (s *Session) focus(idx int) {
	s.current = idx
	s.pending = s.table.Row(idx).Category
}

func (s *Session) persist() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(s.table); err != nil {
		logging.ErrorWithContext(s.logger, "annotation table save failed", "annotation_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check annotations_path permissions and free space"),
			logging.String(logging.FieldImpact, "ratings since the last save are not on disk"),
		)
		return err
	}
	return nil
}
