package report

import (
	"strings"
	"testing"

	"cleanse/pkg/records"
)

/*
TestBuild checks record accounting (valid + invalid == total) and that null
counts reflect the final, post-filter dataset.
*/
func TestBuild(t *testing.T) {
	final := &records.Dataset{
		Columns: []string{"Patient_ID", "Age"},
		Rows: []records.Record{
			{"Patient_ID": "P0001", "Age": nil},
			{"Patient_ID": "P0002", "Age": int64(40)},
			{"Patient_ID": nil, "Age": nil},
		},
	}
	invalid := map[string][]string{
		"Patient_ID": {"bogus"},
		"Age":        {"150", "-3"},
	}

	r := Build(5, final, invalid)

	if r.TotalRecords != 5 || r.ValidRecords != 3 || r.InvalidRecords != 2 {
		t.Fatalf("accounting: total=%d valid=%d invalid=%d", r.TotalRecords, r.ValidRecords, r.InvalidRecords)
	}
	if r.ValidRecords+r.InvalidRecords != r.TotalRecords {
		t.Fatalf("valid+invalid != total")
	}
	if r.NullCounts["Age"] != 2 || r.NullCounts["Patient_ID"] != 1 {
		t.Fatalf("null counts: %v", r.NullCounts)
	}
	if len(r.InvalidValues["Age"]) != 2 {
		t.Fatalf("invalid values not carried: %v", r.InvalidValues)
	}
}

/*
TestRender checks the plain-text layout: five blocks in fixed order, each
"key:" on its own line, maps as indented JSON with sorted keys.
*/
func TestRender(t *testing.T) {
	r := Report{
		TotalRecords:   10,
		ValidRecords:   8,
		InvalidRecords: 2,
		InvalidValues: map[string][]string{
			"Gender": {"X"},
			"Age":    {"150"},
		},
		NullCounts: map[string]int{"Age": 1, "Gender": 2},
	}

	b, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(b)

	keys := []string{"total_records", "valid_records", "invalid_records", "invalid_values", "null_counts"}
	last := -1
	for _, k := range keys {
		i := strings.Index(out, k+":\n")
		if i < 0 {
			t.Fatalf("missing block %q in:\n%s", k, out)
		}
		if i < last {
			t.Fatalf("block %q out of order in:\n%s", k, out)
		}
		last = i
	}

	if !strings.Contains(out, "total_records:\n10\n\n") {
		t.Fatalf("scalar block malformed:\n%s", out)
	}

	// JSON maps render sorted, so Age precedes Gender.
	if strings.Index(out, `"Age"`) > strings.Index(out, `"Gender"`) {
		t.Fatalf("map keys not sorted:\n%s", out)
	}
	if !strings.Contains(out, "\"150\"") {
		t.Fatalf("invalid value missing:\n%s", out)
	}
}

/*
TestRender_Deterministic: two renders of the same report are identical.
*/
func TestRender_Deterministic(t *testing.T) {
	r := Report{
		TotalRecords:  3,
		ValidRecords:  3,
		InvalidValues: map[string][]string{"a": {}, "b": {"x"}, "c": {}},
		NullCounts:    map[string]int{"a": 0, "b": 1, "c": 2},
	}
	first, err := r.Render()
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("renders differ:\n%s\n---\n%s", first, second)
	}
}
