package builtin

import (
	"strings"

	"cleanse/pkg/records"
)

// Normalize trims surrounding whitespace from every string field and
// converts fields left empty by the trim to nil. Non-breaking spaces are
// rewritten to plain spaces first; they show up in exported spreadsheets.
type Normalize struct{}

func (Normalize) Apply(in *records.Dataset) *records.Dataset {
	for _, r := range in.Rows {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if s == "" {
				r[k] = nil
			} else {
				r[k] = s
			}
		}
	}
	return in
}
