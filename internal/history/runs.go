package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound reports an unknown run id.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous reports a run id prefix matching more than one run.
var ErrAmbiguous = errors.New("run id prefix is ambiguous")

// Kind distinguishes full extraction runs from cleanup-only runs.
type Kind string

const (
	KindExtract Kind = "extract"
	KindCleanup Kind = "cleanup"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID             string
	Kind           Kind
	Status         Status
	DryRun         bool
	StartedAt      time.Time
	FinishedAt     time.Time
	DecksTotal     int
	DecksFailed    int
	Slides         int
	Observations   int
	Staged         int
	Written        int
	SkippedNoDigit int
	DecodeFailures int
	Unverified     int
	Removed        int
	Remaining      int
	ErrorMessage   string
}

// Duration returns the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DeckResult is the per-deck outcome within a run.
type DeckResult struct {
	DeckPath     string
	Year         string
	Status       string
	Slides       int
	Staged       int
	Written      int
	ErrorMessage string
}

const runColumns = "id, kind, status, dry_run, started_at, finished_at, decks_total, decks_failed, slides, observations, staged, written, skipped_no_digit, decode_failures, unverified, removed, remaining, error_message"

// Begin records a run in the running state.
func (s *Store) Begin(ctx context.Context, run Run) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (id, kind, status, dry_run, started_at) VALUES (?, ?, ?, ?, ?)`,
			run.ID, string(run.Kind), string(StatusRunning), boolToInt(run.DryRun), nullableTime(run.StartedAt),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// Finish stores the totals and deck results of a run in one transaction.
func (s *Store) Finish(ctx context.Context, run Run, decks []DeckResult) error {
	ctx = ensureContext(ctx)
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, finished_at = ?, decks_total = ?, decks_failed = ?, slides = ?,
                observations = ?, staged = ?, written = ?, skipped_no_digit = ?, decode_failures = ?,
                unverified = ?, removed = ?, remaining = ?, error_message = ?
             WHERE id = ?`,
			string(run.Status), nullableTime(run.FinishedAt), run.DecksTotal, run.DecksFailed, run.Slides,
			run.Observations, run.Staged, run.Written, run.SkippedNoDigit, run.DecodeFailures,
			run.Unverified, run.Removed, run.Remaining, nullableString(run.ErrorMessage),
			run.ID,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%s: %w", run.ID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM deck_results WHERE run_id = ?`, run.ID); err != nil {
			return fmt.Errorf("clear deck results: %w", err)
		}
		for i, deck := range decks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO deck_results (run_id, position, deck_path, year, status, slides, staged, written, error_message)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, i, deck.DeckPath, nullableString(deck.Year), deck.Status,
				deck.Slides, deck.Staged, deck.Written, nullableString(deck.ErrorMessage),
			); err != nil {
				return fmt.Errorf("insert deck result: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit finish: %w", err)
		}
		return nil
	})
}

// List returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns the run whose id equals or uniquely starts with idOrPrefix,
// together with its deck results in processing order.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (Run, []DeckResult, error) {
	ctx = ensureContext(ctx)
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		idOrPrefix, len(idOrPrefix), idOrPrefix,
	)
	if err != nil {
		return Run{}, nil, fmt.Errorf("get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return Run{}, nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate runs: %w", err)
	}

	var run Run
	switch {
	case len(matches) == 0:
		return Run{}, nil, fmt.Errorf("%s: %w", idOrPrefix, ErrNotFound)
	case len(matches) == 1:
		run = matches[0]
	default:
		exact := false
		for _, m := range matches {
			if m.ID == idOrPrefix {
				run, exact = m, true
			}
		}
		if !exact {
			return Run{}, nil, fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguous)
		}
	}

	decks, err := s.deckResults(ctx, run.ID)
	if err != nil {
		return Run{}, nil, err
	}
	return run, decks, nil
}

func (s *Store) deckResults(ctx context.Context, runID string) ([]DeckResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT deck_path, year, status, slides, staged, written, error_message
         FROM deck_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list deck results: %w", err)
	}
	defer rows.Close()

	var decks []DeckResult
	for rows.Next() {
		var (
			deck   DeckResult
			year   sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&deck.DeckPath, &year, &deck.Status, &deck.Slides, &deck.Staged, &deck.Written, &errMsg); err != nil {
			return nil, fmt.Errorf("scan deck result: %w", err)
		}
		deck.Year = year.String
		deck.ErrorMessage = errMsg.String
		decks = append(decks, deck)
	}
	return decks, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		kind       string
		status     string
		dryRun     int
		startedRaw sql.NullString
		finished   sql.NullString
		errMsg     sql.NullString
	)
	if err := scanner.Scan(
		&run.ID, &kind, &status, &dryRun, &startedRaw, &finished,
		&run.DecksTotal, &run.DecksFailed, &run.Slides, &run.Observations, &run.Staged,
		&run.Written, &run.SkippedNoDigit, &run.DecodeFailures, &run.Unverified,
		&run.Removed, &run.Remaining, &errMsg,
	); err != nil {
		return Run{}, err
	}
	run.Kind = Kind(kind)
	run.Status = Status(status)
	run.DryRun = dryRun != 0
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finished)
	run.ErrorMessage = errMsg.String
	return run, nil
}
