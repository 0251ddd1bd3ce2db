// Package datasource abstracts where the raw patient dataset comes from.
package datasource

import (
	"context"
	"io"
)

// Source opens a raw input for reading. Implementations wrap filesystems,
// object stores, or HTTP endpoints; the pipeline only sees the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
