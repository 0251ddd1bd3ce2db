// Package report aggregates run statistics into the validation report
// written alongside the cleaned dataset.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"cleanse/pkg/records"
)

// Report summarizes one cleaning run. It is built once and never mutated
// afterwards.
type Report struct {
	// TotalRecords is the row count before any filtering.
	TotalRecords int `json:"total_records"`

	// ValidRecords is the row count of the final, post-filter dataset.
	ValidRecords int `json:"valid_records"`

	// InvalidRecords is TotalRecords - ValidRecords.
	InvalidRecords int `json:"invalid_records"`

	// InvalidValues maps column name to the distinct raw values rejected by
	// that column's rule, in first-seen order.
	InvalidValues map[string][]string `json:"invalid_values"`

	// NullCounts maps column name to the number of null fields in the
	// final dataset.
	NullCounts map[string]int `json:"null_counts"`
}

// Build computes the report from the pre-filter record count, the final
// dataset, and the invalid-values map accumulated by the rule engine.
// Null counts are taken from the final dataset, after row filtering.
func Build(total int, final *records.Dataset, invalid map[string][]string) Report {
	nulls := make(map[string]int, len(final.Columns))
	for _, col := range final.Columns {
		n := 0
		for _, r := range final.Rows {
			if v, ok := r[col]; !ok || v == nil {
				n++
			}
		}
		nulls[col] = n
	}

	return Report{
		TotalRecords:   total,
		ValidRecords:   len(final.Rows),
		InvalidRecords: total - len(final.Rows),
		InvalidValues:  invalid,
		NullCounts:     nulls,
	}
}

// Render produces the plain-text report: one block per key in fixed order,
// each formatted as "key:\n<value>\n\n". Map-valued keys render as indented
// JSON, which is deterministic since Go sorts map keys when marshaling.
func (r Report) Render() ([]byte, error) {
	var buf bytes.Buffer

	writeInt := func(key string, n int) {
		buf.WriteString(key)
		buf.WriteString(":\n")
		buf.WriteString(strconv.Itoa(n))
		buf.WriteString("\n\n")
	}
	writeJSON := func(key string, v any) error {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("render %s: %w", key, err)
		}
		buf.WriteString(key)
		buf.WriteString(":\n")
		buf.Write(b)
		buf.WriteString("\n\n")
		return nil
	}

	writeInt("total_records", r.TotalRecords)
	writeInt("valid_records", r.ValidRecords)
	writeInt("invalid_records", r.InvalidRecords)
	if err := writeJSON("invalid_values", r.InvalidValues); err != nil {
		return nil, err
	}
	if err := writeJSON("null_counts", r.NullCounts); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
