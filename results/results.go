// Package results keeps a log of completed predictor runs in SQLite.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/npillmayer/schuko/tracing"

	"github.com/sarchlab/bpsim/predictor"
)

// tracer writes to trace with key 'bpsim.results'
func tracer() tracing.Trace {
	return tracing.Select("bpsim.results")
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	predictor       TEXT    NOT NULL,
	k               INTEGER NOT NULL,
	m1              INTEGER NOT NULL,
	n               INTEGER NOT NULL,
	m2              INTEGER NOT NULL,
	trace           TEXT    NOT NULL,
	trace_sha3      TEXT    NOT NULL,
	predictions     INTEGER NOT NULL,
	mispredictions  INTEGER NOT NULL,
	recorded_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_trace ON runs(trace_sha3);
`

// Run is one completed trace replay.
type Run struct {
	ID             int64
	Config         predictor.Config
	Trace          string
	TraceDigest    string
	Predictions    uint64
	Mispredictions uint64
	RecordedAt     time.Time
}

// MispredictionRate returns the misprediction rate as a percentage.
func (r Run) MispredictionRate() (float64, error) {
	if r.Predictions == 0 {
		return 0, predictor.ErrNoPredictions
	}
	return 100 * float64(r.Mispredictions) / float64(r.Predictions), nil
}

// NewRun builds a Run from the final snapshot of a replay.
func NewRun(s predictor.Snapshot, tracePath, digest string) Run {
	return Run{
		Config:         s.Config,
		Trace:          tracePath,
		TraceDigest:    digest,
		Predictions:    s.Predictions,
		Mispredictions: s.Mispredictions,
		RecordedAt:     time.Now(),
	}
}

// Store is a SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run log at path. Use ":memory:" for a
// throw-away store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create results schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a run and returns its ID.
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (predictor, k, m1, n, m2, trace, trace_sha3,
			predictions, mispredictions, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Config.Variant.String(), r.Config.K, r.Config.M1, r.Config.N, r.Config.M2,
		r.Trace, r.TraceDigest, r.Predictions, r.Mispredictions, r.RecordedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	tracer().Debugf("recorded run %d: %s on %s", id, r.Config.Variant, r.Trace)
	return id, nil
}

// List returns all runs in insertion order.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	return s.query(ctx, `SELECT id, predictor, k, m1, n, m2, trace, trace_sha3,
		predictions, mispredictions, recorded_at FROM runs ORDER BY id`)
}

// ForTrace returns the runs recorded for a trace digest, best first.
func (s *Store) ForTrace(ctx context.Context, digest string) ([]Run, error) {
	return s.query(ctx, `SELECT id, predictor, k, m1, n, m2, trace, trace_sha3,
		predictions, mispredictions, recorded_at FROM runs
		WHERE trace_sha3 = ?
		ORDER BY CAST(mispredictions AS REAL) / MAX(predictions, 1), id`, digest)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			name     string
			recorded int64
		)
		if err := rows.Scan(&r.ID, &name, &r.Config.K, &r.Config.M1, &r.Config.N, &r.Config.M2,
			&r.Trace, &r.TraceDigest, &r.Predictions, &r.Mispredictions, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.Config.Variant, err = predictor.ParseVariant(name)
		if err != nil {
			return nil, err
		}
		r.RecordedAt = time.Unix(recorded, 0)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
