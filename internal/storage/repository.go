// Package storage contains storage-agnostic contracts for the optional
// database sink of the cleaned dataset, plus the factory used to construct
// concrete backends by kind. Backends register themselves in init; import
// cleanse/internal/storage/all (blank) to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cleanse/pkg/records"
)

// Config carries the backend-agnostic connection settings derived from the
// pipeline configuration.
type Config struct {
	// Kind selects the backend ("postgres", "sqlite", "mysql", "mssql").
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the destination table name.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string

	// NumericColumns names the subset of Columns stored as integers;
	// every other column is stored as text.
	NumericColumns []string
}

// Repository is the minimal sink interface the pipeline depends on.
type Repository interface {
	// EnsureTable creates the destination table when it does not exist.
	EnsureTable(ctx context.Context) error

	// CopyFrom bulk-inserts rows aligned with the columns order and
	// returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Close releases the underlying connections.
	Close()
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Later registrations for
// the same kind replace earlier ones.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New constructs the Repository for cfg.Kind, or an error naming the known
// kinds when no factory is registered.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, registeredKinds())
	}
	return f(ctx, cfg)
}

func registeredKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RowsFromDataset flattens the dataset into positional rows aligned with
// the given column order, ready for CopyFrom.
func RowsFromDataset(ds *records.Dataset, columns []string) [][]any {
	rows := make([][]any, 0, len(ds.Rows))
	for _, rec := range ds.Rows {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		rows = append(rows, row)
	}
	return rows
}

// IsNumeric reports whether col is listed in cfg.NumericColumns.
func (c Config) IsNumeric(col string) bool {
	for _, n := range c.NumericColumns {
		if n == col {
			return true
		}
	}
	return false
}
