package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timestampLayout keeps the fractional seconds fixed-width so that the
// lexicographic ORDER BY over started_at matches chronological order.
// RFC3339Nano trims trailing zeros and breaks that property.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timeNow is stubbed in tests.
var timeNow = time.Now

// Status describes the outcome recorded for a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusDownmixed Status = "downmixed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Run is one journal entry.
type Run struct {
	ID         string
	InputPath  string
	OutputPath string
	Channels   []int
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Outcome carries the final state written by Finish.
type Outcome struct {
	Channels []int
	Status   Status
	Detail   string
}

// Store manages run journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        input_path TEXT NOT NULL,
        output_path TEXT NOT NULL,
        channels TEXT NOT NULL DEFAULT '[]',
        status TEXT NOT NULL,
        detail TEXT NOT NULL DEFAULT '',
        started_at TEXT NOT NULL,
        finished_at TEXT
    )`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin inserts a running journal entry and returns its id.
func (s *Store) Begin(ctx context.Context, inputPath, outputPath string) (string, error) {
	id := uuid.NewString()
	now := timeNow().UTC().Format(timestampLayout)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, input_path, output_path, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, inputPath, outputPath, StatusRunning, now,
	)
	if err != nil {
		return "", fmt.Errorf("record run start: %w", err)
	}
	return id, nil
}

// Finish updates a journal entry with its final outcome.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	channels, err := json.Marshal(outcome.Channels)
	if err != nil {
		return fmt.Errorf("encode channels: %w", err)
	}
	now := timeNow().UTC().Format(timestampLayout)

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET channels = ?, status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		string(channels), outcome.Status, outcome.Detail, now, id,
	)
	if err != nil {
		return fmt.Errorf("record run outcome: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record run outcome: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record run outcome: unknown run %s", id)
	}
	return nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, input_path, output_path, channels, status, detail, started_at, finished_at
        FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
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
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Prune removes everything but the most recent keep entries. Zero keeps all.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var channels string
	var status string
	var startedAt string
	var finishedAt sql.NullString

	if err := rows.Scan(&run.ID, &run.InputPath, &run.OutputPath, &channels, &status, &run.Detail, &startedAt, &finishedAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if channels != "" {
		if err := json.Unmarshal([]byte(channels), &run.Channels); err != nil {
			return Run{}, fmt.Errorf("decode channels for run %s: %w", run.ID, err)
		}
	}
	run.Status = Status(status)

	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at for run %s: %w", run.ID, err)
	}
	run.StartedAt = started

	if finishedAt.Valid && finishedAt.String != "" {
		finished, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at for run %s: %w", run.ID, err)
		}
		run.FinishedAt = finished
	}
	return run, nil
}
