package builtin

import (
	"strconv"

	"cleanse/pkg/records"
)

// Coerce converts the string form of the listed numeric columns to int64
// (or float64 for non-integral values) in place. It runs after the schema
// gate, which has already proven every value convertible; values that still
// fail to parse are left as-is rather than dropped.
type Coerce struct {
	Numeric []string
}

func (c Coerce) Apply(in *records.Dataset) *records.Dataset {
	if len(c.Numeric) == 0 {
		return in
	}
	for _, r := range in.Rows {
		for _, col := range c.Numeric {
			v, ok := r[col]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				r[col] = n
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				r[col] = f
			}
		}
	}
	return in
}
