// Package schema defines the expected column layout of the patient dataset
// and the fatal validation gate applied before any cleaning happens.
package schema

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"cleanse/pkg/records"
)

// Kind is the declared type of a column.
type Kind string

const (
	KindText    Kind = "text"
	KindNumeric Kind = "numeric"
)

// Column pairs a column name with its declared kind.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema is the ordered set of columns a dataset must provide.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Patients returns the fixed schema for the patient dataset.
func Patients() Schema {
	return Schema{Columns: []Column{
		{Name: "Patient_ID", Kind: KindText},
		{Name: "Age", Kind: KindNumeric},
		{Name: "Gender", Kind: KindText},
		{Name: "Blood_Pressure", Kind: KindText},
		{Name: "Cholesterol", Kind: KindText},
		{Name: "Diagnosis", Kind: KindText},
	}}
}

// ColumnNames returns the schema's column names in declaration order.
func (s Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// ValidationError reports schema-level problems. Any non-empty instance is
// fatal: the pipeline must stop before modifying or writing data.
type ValidationError struct {
	// MissingColumns lists expected columns absent from the dataset.
	MissingColumns []string

	// TypeErrorColumns lists numeric columns containing at least one value
	// that cannot be converted to a number. The whole column is flagged,
	// not individual values.
	TypeErrorColumns []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingColumns) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(e.MissingColumns, ", ")))
	}
	if len(e.TypeErrorColumns) > 0 {
		parts = append(parts, fmt.Sprintf("type errors: %s", strings.Join(e.TypeErrorColumns, ", ")))
	}
	if len(parts) == 0 {
		return "schema validation: no issues"
	}
	return "schema validation: " + strings.Join(parts, "; ")
}

// Validate checks ds against the expected schema and returns a
// *ValidationError when any column is missing or not coercible to its
// declared kind. It never mutates the dataset. Each detected problem is
// logged on the provided logger.
//
// Text columns always coerce; numeric columns must parse as integers or
// floats in every non-null row.
func Validate(ds *records.Dataset, s Schema, logger *log.Logger) error {
	present := make(map[string]struct{}, len(ds.Columns))
	for _, c := range ds.Columns {
		present[c] = struct{}{}
	}

	verr := &ValidationError{}
	for _, col := range s.Columns {
		if _, ok := present[col.Name]; !ok {
			verr.MissingColumns = append(verr.MissingColumns, col.Name)
			if logger != nil {
				logger.Printf("schema: missing column %q", col.Name)
			}
			continue
		}
		if col.Kind != KindNumeric {
			continue
		}
		if ok, sample := numericColumnOK(ds, col.Name); !ok {
			verr.TypeErrorColumns = append(verr.TypeErrorColumns, col.Name)
			if logger != nil {
				logger.Printf("schema: column %q not numeric (e.g. %q)", col.Name, sample)
			}
		}
	}

	sort.Strings(verr.MissingColumns)
	sort.Strings(verr.TypeErrorColumns)

	if len(verr.MissingColumns) == 0 && len(verr.TypeErrorColumns) == 0 {
		return nil
	}
	return verr
}

// numericColumnOK reports whether every non-null value in the column parses
// as a number. When it does not, the first offending raw value is returned
// for diagnostics.
func numericColumnOK(ds *records.Dataset, col string) (bool, string) {
	for _, r := range ds.Rows {
		v := r[col]
		if v == nil {
			continue
		}
		switch t := v.(type) {
		case int, int32, int64, float64:
			// already numeric
		case string:
			// The gate runs before normalization, so tolerate padding
			// (TrimSpace also covers non-breaking spaces).
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return false, t
			}
		default:
			return false, records.AsString(v)
		}
	}
	return true, ""
}
