// Package mysql implements a MySQL-backed storage.Repository using
// database/sql with multi-row INSERT statements.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"cleanse/internal/storage"
)

// insertBatch caps rows per INSERT statement; MySQL handles large
// statements, but a modest chunk keeps packets small.
const insertBatch = 200

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// newRepository is a test hook pointing at NewRepository by default.
var newRepository = NewRepository

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := newRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}

// NewRepository opens a MySQL connection using cfg.DSN, e.g.
// "user:pass@tcp(localhost:3306)/clinic".
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, nil
}

// EnsureTable creates the destination table when absent. Numeric columns
// map to BIGINT, everything else to TEXT.
func (r *Repository) EnsureTable(ctx context.Context) error {
	defs := make([]string, len(r.cfg.Columns))
	for i, c := range r.cfg.Columns {
		t := "TEXT"
		if r.cfg.IsNumeric(c) {
			t = "BIGINT"
		}
		defs[i] = fmt.Sprintf("`%s` %s", c, t)
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (%s)", r.cfg.Table, strings.Join(defs, ", "))
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: create table %s: %w", r.cfg.Table, err)
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
		return 0, fmt.Errorf("mysql: begin: %w", err)
	}
	defer tx.Rollback()

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "`" + c + "`"
	}
	single := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"

	var total int64
	for start := 0; start < len(rows); start += insertBatch {
		end := start + insertBatch
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			placeholders[i] = single
			args = append(args, row...)
		}

		stmt := fmt.Sprintf(
			"INSERT INTO `%s` (%s) VALUES %s",
			r.cfg.Table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
		)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return total, fmt.Errorf("mysql: insert batch: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		return total, fmt.Errorf("mysql: commit: %w", err)
	}
	return total, nil
}

// Close implements storage.Repository.Close.
func (r *Repository) Close() {
	r.db.Close()
}
