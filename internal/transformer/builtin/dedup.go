// Package builtin contains the reusable dataset transformers used by the
// cleaning pipeline.
//
// DeDup removes exact-duplicate rows. Two rows are duplicates when every
// column value compares equal on its string form; the first occurrence wins
// and input order is preserved among survivors.
package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"cleanse/pkg/records"
)

// DeDup drops rows whose full column tuple was already seen.
type DeDup struct {
	// Dropped, when non-nil, receives the 0-based index of each removed row.
	Dropped func(index int)
}

// Apply returns a dataset containing only the first occurrence of each
// distinct row. Row identity is an xxh3 hash of the column values joined
// with a field separator; nil encodes distinctly from the empty string.
func (d DeDup) Apply(in *records.Dataset) *records.Dataset {
	if len(in.Rows) < 2 {
		return in
	}

	seen := make(map[uint64]struct{}, len(in.Rows))
	out := in.Rows[:0]

	var b strings.Builder
	for i, r := range in.Rows {
		b.Reset()
		for _, col := range in.Columns {
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			v := r[col]
			if v == nil {
				b.WriteByte('\x00')
				continue
			}
			b.WriteString(records.AsString(v))
		}

		key := xxh3.HashString(b.String())
		if _, dup := seen[key]; dup {
			if d.Dropped != nil {
				d.Dropped(i)
			}
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	in.Rows = out
	return in
}
