// Package csv reads the delimited patient dataset into memory and writes the
// cleaned dataset back out. Malformed rows are skipped and counted rather
// than failing the whole read, so one broken line never sinks a run.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"cleanse/pkg/records"
)

// Options configures the parser. Zero values give sensible defaults.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical column names before
	// the default normalization is applied.
	HeaderMap map[string]string

	// FoldDiacritics strips combining marks from header names so accented
	// source headers canonicalize to plain ASCII.
	FoldDiacritics bool

	// Logger receives skipped-row diagnostics; nil silences them.
	Logger *log.Logger
}

// Parser parses CSV input according to Options. A Parser is reusable across
// inputs but not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Parse consumes CSV records from r and returns the dataset plus the number
// of rows skipped for parse errors or width mismatches. Every surviving row
// carries an entry per column; empty fields become nil.
func (p *Parser) Parse(r io.Reader) (*records.Dataset, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1 // width is enforced after read, per row

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = p.normalizeHeaders(h)
	} else {
		return nil, 0, fmt.Errorf("headerless input is not supported")
	}

	ds := &records.Dataset{Columns: headers}
	var skipped int
	const logLimit = 100

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < logLimit && p.opt.Logger != nil {
				p.opt.Logger.Printf("skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < logLimit && p.opt.Logger != nil {
				p.opt.Logger.Printf("skipping row %d: expected %d fields, got %d", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		ds.Rows = append(ds.Rows, rec)
	}

	return ds, skipped, nil
}

// emptyToNil converts an empty string to nil; other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical column names: BOM stripped from the
// first cell, HeaderMap applied, optional diacritic folding, and spaces
// rewritten to underscores. Case is preserved so source headers like
// "Patient ID" canonicalize to "Patient_ID".
func (p *Parser) normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if p.opt.HeaderMap != nil {
			if m, ok := p.opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		if p.opt.FoldDiacritics {
			c = foldDiacritics(c)
		}
		res[i] = strings.ReplaceAll(c, " ", "_")
	}
	return res
}
