// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Rows are written with batched INSERTs inside a transaction;
// SQLite has no dedicated bulk-load API, but transactions keep performance
// acceptable for the dataset sizes this pipeline handles.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cleanse/internal/storage"
)

// insertBatch caps rows per INSERT statement to stay well under SQLite's
// bound-parameter limit.
const insertBatch = 200

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// newRepository is a test hook pointing at NewRepository by default.
var newRepository = NewRepository

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := newRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}

// NewRepository opens a SQLite connection using cfg.DSN, e.g.
// "file:patients.db?cache=shared" or a bare file path.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, nil
}

// EnsureTable creates the destination table when absent. Numeric columns
// map to INTEGER, everything else to TEXT.
func (r *Repository) EnsureTable(ctx context.Context) error {
	defs := make([]string, len(r.cfg.Columns))
	for i, c := range r.cfg.Columns {
		t := "TEXT"
		if r.cfg.IsNumeric(c) {
			t = "INTEGER"
		}
		defs[i] = fmt.Sprintf("%q %s", c, t)
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", r.cfg.Table, strings.Join(defs, ", "))
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", r.cfg.Table, err)
	}
	return nil
}

// CopyFrom inserts rows in chunks inside a single transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}

	var total int64
	for start := 0; start < len(rows); start += insertBatch {
		end := start + insertBatch
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		single := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
		for i, row := range chunk {
			placeholders[i] = single
			args = append(args, row...)
		}

		stmt := fmt.Sprintf(
			"INSERT INTO %q (%s) VALUES %s",
			r.cfg.Table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
		)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return total, fmt.Errorf("sqlite: insert batch: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		return total, fmt.Errorf("sqlite: commit: %w", err)
	}
	return total, nil
}

// Close implements storage.Repository.Close.
func (r *Repository) Close() {
	r.db.Close()
}
