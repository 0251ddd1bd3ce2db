package builtin

import "cleanse/pkg/records"

// NullThreshold removes any row carrying more than MaxNulls null fields.
// A row with exactly MaxNulls nulls is retained. Order is preserved among
// surviving rows.
type NullThreshold struct {
	MaxNulls int

	// Dropped, when non-nil, receives the 0-based index of each removed row.
	Dropped func(index int)
}

func (n NullThreshold) Apply(in *records.Dataset) *records.Dataset {
	out := in.Rows[:0]
	for i, r := range in.Rows {
		if r.NullCount(in.Columns) > n.MaxNulls {
			if n.Dropped != nil {
				n.Dropped(i)
			}
			continue
		}
		out = append(out, r)
	}
	in.Rows = out
	return in
}
