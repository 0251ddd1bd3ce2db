package rules

import (
	"cleanse/pkg/records"
)

// Rejection describes a single value nulled by the engine. It feeds the
// optional Reject sink, mirroring how validation rejects surface elsewhere.
type Rejection struct {
	Column string
	Value  string
	Reason string
}

// Engine applies a rule set to a dataset. Columns are processed
// independently: nulling a value under one rule never re-triggers another
// rule, and the order of rule application does not affect the final state.
type Engine struct {
	Rules []Rule

	// Reject, when non-nil, receives one call per nulled value (including
	// repeats of the same raw value on different rows).
	Reject func(Rejection)
}

// Apply evaluates every rule over ds, replacing failing values with nil in
// place and normalizing case-folded enum values. It returns the distinct
// original values rejected per column, keyed by column name, in first-seen
// order. Every rule column is present in the result, possibly with an empty
// list.
//
// Already-null values are left untouched and never recorded, which makes
// Apply idempotent: re-running it on its own output nulls nothing further.
func (e *Engine) Apply(ds *records.Dataset) map[string][]string {
	invalid := make(map[string][]string, len(e.Rules))

	for _, ru := range e.Rules {
		invalid[ru.Column] = []string{}
		seen := make(map[string]struct{})

		for _, row := range ds.Rows {
			v, exists := row[ru.Column]
			if !exists || v == nil {
				continue
			}

			stored, ok := ru.checkValue(v)
			if ok {
				if !sameValue(stored, v) {
					row[ru.Column] = stored
				}
				continue
			}

			raw := records.AsString(v)
			if _, dup := seen[raw]; !dup {
				seen[raw] = struct{}{}
				invalid[ru.Column] = append(invalid[ru.Column], raw)
			}
			row[ru.Column] = nil

			if e.Reject != nil {
				e.Reject(Rejection{Column: ru.Column, Value: raw, Reason: ru.Message})
			}
		}
	}

	return invalid
}

// sameValue avoids a map write when the stored form equals the original.
func sameValue(a, b any) bool { return a == b }
