// Package journal keeps a SQLite history of replay runs: one row per run
// and one row per timeline entity the run processed.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/chazu/lignin-replay/pkg/importer"
)

// ErrRunNotFound is returned by Entries for an unknown run id.
var ErrRunNotFound = errors.New("journal: run not found")

// Journal is a SQLite-backed run history.
type Journal struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// Run is one recorded replay.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Entities   int
	Bodies     int
	Error      string
}

// Failed reports whether the run halted on an error.
func (r Run) Failed() bool { return r.Error != "" }

// Entry is one entity outcome of a run.
type Entry struct {
	RunID     string
	Position  int
	EntityID  string
	Name      string
	Type      string
	Skipped   bool
	Profiles  int
	Unmatched int
	Feature   string
	Operation string
	Duration  time.Duration
	Error     string
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) newID(t time.Time) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), j.entropy).String()
}

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		entities    INTEGER NOT NULL,
		bodies      INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS entities (
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		entity_id   TEXT NOT NULL,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		skipped     INTEGER NOT NULL DEFAULT 0,
		profiles    INTEGER NOT NULL DEFAULT 0,
		unmatched   INTEGER NOT NULL DEFAULT 0,
		feature     TEXT NOT NULL DEFAULT '',
		operation   TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	);
	`)
	return err
}

// Record stores a finished run and its entity outcomes and returns the new
// run id. res may be a partial result; runErr is the error Run returned.
func (j *Journal) Record(ctx context.Context, source string, started time.Time, res *importer.Result, runErr error, bodies int) (string, error) {
	id := j.newID(started)
	finished := time.Now()

	var outcomes []importer.EntityOutcome
	if res != nil {
		outcomes = res.Entities
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at, finished_at, entities, bodies, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, source, started.UTC().Format(time.RFC3339Nano), finished.UTC().Format(time.RFC3339Nano),
		len(outcomes), bodies, errString(runErr))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, o := range outcomes {
		op := ""
		if o.Feature != "" {
			op = o.Operation.String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entities (run_id, position, entity_id, name, type, skipped, profiles, unmatched, feature, operation, duration_ns, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, o.Position, o.ID, o.Name, o.Type, o.Skipped, o.Profiles, o.Unmatched,
			string(o.Feature), op, int64(o.Duration), errString(o.Err))
		if err != nil {
			return "", fmt.Errorf("insert entity %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, source, started_at, finished_at, entities, bodies, error FROM runs ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Source, &started, &finished, &r.Entities, &r.Bodies, &r.Error); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries returns the entity outcomes of a run in timeline order.
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	var exists int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, position, entity_id, name, type, skipped, profiles, unmatched, feature, operation, duration_ns, error
		 FROM entities WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ns int64
		)
		if err := rows.Scan(&e.RunID, &e.Position, &e.EntityID, &e.Name, &e.Type, &e.Skipped,
			&e.Profiles, &e.Unmatched, &e.Feature, &e.Operation, &ns, &e.Error); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ns)
		out = append(out, e)
	}
	return out, rows.Err()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
