package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"cleanse/pkg/records"
)

// Write renders the dataset as CSV: a header row in column order followed by
// one row per record. Null fields render as empty strings.
func Write(w io.Writer, ds *records.Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(ds.Columns))
	for i, r := range ds.Rows {
		for j, col := range ds.Columns {
			row[j] = records.AsString(r[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
