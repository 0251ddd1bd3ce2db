// Package transformer defines the dataset transformation contract used by
// the cleaning pipeline.
package transformer

import "cleanse/pkg/records"

// Transformer rewrites a dataset. Implementations may mutate records in
// place and may return a dataset with fewer rows; the column set is never
// changed.
type Transformer interface {
	Apply(*records.Dataset) *records.Dataset
}

// Chain is an ordered list of transformers applied left to right.
type Chain []Transformer

// Apply runs each transformer in order and returns the final dataset.
func (c Chain) Apply(in *records.Dataset) *records.Dataset {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
