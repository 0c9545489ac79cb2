package local

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tarmac-project/d1sdk/binding"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

const driverName = "sqlite"

// Database is a binding.Database over an embedded SQLite database.
type Database struct {
	db *sqlx.DB
}

var _ binding.Database = (*Database)(nil)

// Open opens the SQLite database at dsn. Pass ":memory:" for a throwaway
// in-memory database.
func Open(dsn string) (*Database, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection keeps an in-memory database alive and matches D1's
	// single-writer model.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &Database{db: db}, nil
}

// DB exposes the underlying handle, for seeding and inspection.
func (d *Database) DB() *sqlx.DB { return d.db }

// Close closes the database.
func (d *Database) Close() error { return d.db.Close() }

// Prepare implements binding.Database.
func (d *Database) Prepare(query string) binding.Statement {
	return &statement{db: d.db, query: query}
}

type statement struct {
	db     *sqlx.DB
	query  string
	params []any
}

func (s *statement) Bind(values ...any) binding.Statement {
	return &statement{db: s.db, query: s.query, params: append([]any(nil), values...)}
}

func (s *statement) All(ctx context.Context) (*binding.AllResult, error) {
	start := time.Now()

	rows, err := s.db.QueryxContext(ctx, s.query, s.params...)
	if err != nil {
		return nil, &binding.CallError{Op: "all", Kind: binding.ErrQueryFailed, Err: err}
	}
	defer rows.Close() //nolint:errcheck

	results := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, &binding.CallError{Op: "all", Kind: binding.ErrQueryFailed, Err: err}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &binding.CallError{Op: "all", Kind: binding.ErrQueryFailed, Err: err}
	}

	return &binding.AllResult{
		Results: results,
		Meta: binding.Meta{
			Duration: milliseconds(time.Since(start)),
			RowsRead: int64(len(results)),
		},
	}, nil
}

func (s *statement) Run(ctx context.Context) (*binding.RunResult, error) {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, s.query, s.params...)
	if err != nil {
		return nil, &binding.CallError{Op: "run", Kind: binding.ErrQueryFailed, Err: err}
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return nil, &binding.CallError{Op: "run", Kind: binding.ErrQueryFailed, Err: err}
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, &binding.CallError{Op: "run", Kind: binding.ErrQueryFailed, Err: err}
	}

	return &binding.RunResult{Meta: binding.Meta{
		Changes:     changes,
		LastRowID:   lastID,
		Duration:    milliseconds(time.Since(start)),
		RowsWritten: changes,
		ChangedDB:   changes > 0,
	}}, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
