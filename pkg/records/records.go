// Package records defines the in-memory representation of tabular data
// flowing through the cleaning pipeline.
//
// A Record maps column names to scalar values. After parsing, values are
// strings or nil; after numeric coercion, numeric columns hold int64. nil
// always means "null/absent" — the CSV writer renders it as an empty field.
package records

import (
	"strconv"
	"time"
)

// Record is one row: column name -> string, int64, or nil.
type Record map[string]any

// Dataset is an ordered sequence of records sharing a common column set.
// Columns fixes both the set and the output order; every record carries an
// entry (possibly nil) for each column.
type Dataset struct {
	Columns []string
	Rows    []Record
}

// NullCount returns the number of columns whose value is nil in r,
// considering only the columns listed in cols.
func (r Record) NullCount(cols []string) int {
	n := 0
	for _, c := range cols {
		if v, ok := r[c]; !ok || v == nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the record (values are scalars, so a
// shallow map copy suffices).
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	out.Rows = make([]Record, len(d.Rows))
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// AsString converts common scalar types to their string form without the
// overhead of fmt.Sprint. nil maps to "".
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}
