package rules

import (
	"reflect"
	"testing"

	"cleanse/pkg/records"
)

func patientDataset(rows ...records.Record) *records.Dataset {
	return &records.Dataset{
		Columns: []string{"Patient_ID", "Age", "Gender", "Blood_Pressure", "Cholesterol", "Diagnosis"},
		Rows:    rows,
	}
}

/*
TestEngineApply_Defaults runs the full default rule table over a mixed
dataset and checks:
  - failing values are nulled in place,
  - passing values survive unchanged,
  - lowercase gender is folded to uppercase and kept,
  - the invalid map holds distinct raw values per column in first-seen
    order, with an empty (non-nil) list for clean columns.
*/
func TestEngineApply_Defaults(t *testing.T) {
	ds := patientDataset(
		records.Record{"Patient_ID": "P0001", "Age": int64(150), "Gender": "m", "Blood_Pressure": "120/80", "Cholesterol": "Normal", "Diagnosis": "Healthy"},
		records.Record{"Patient_ID": "PX", "Age": int64(34), "Gender": "X", "Blood_Pressure": "999/80", "Cholesterol": "Sky-high", "Diagnosis": "Cured"},
		records.Record{"Patient_ID": "P0003", "Age": int64(150), "Gender": "F", "Blood_Pressure": "120-80", "Cholesterol": "High", "Diagnosis": "Heart Disease"},
	)

	var rejects []Rejection
	e := Engine{
		Rules:  Defaults(),
		Reject: func(r Rejection) { rejects = append(rejects, r) },
	}
	invalid := e.Apply(ds)

	// Row 0: only Age fails; Gender is folded, everything else survives.
	if ds.Rows[0]["Age"] != nil {
		t.Fatalf("Age=150 not nulled: %v", ds.Rows[0]["Age"])
	}
	if ds.Rows[0]["Gender"] != "M" {
		t.Fatalf("Gender=m not folded: %v", ds.Rows[0]["Gender"])
	}
	if ds.Rows[0]["Patient_ID"] != "P0001" || ds.Rows[0]["Blood_Pressure"] != "120/80" {
		t.Fatalf("valid values mutated: %#v", ds.Rows[0])
	}

	// Row 1: everything except Age fails.
	for _, col := range []string{"Patient_ID", "Gender", "Blood_Pressure", "Cholesterol", "Diagnosis"} {
		if ds.Rows[1][col] != nil {
			t.Fatalf("row 1 %s not nulled: %v", col, ds.Rows[1][col])
		}
	}
	if ds.Rows[1]["Age"] != int64(34) {
		t.Fatalf("row 1 Age mutated: %v", ds.Rows[1]["Age"])
	}

	// Row 2: malformed pressure separator fails closed.
	if ds.Rows[2]["Blood_Pressure"] != nil {
		t.Fatalf("120-80 not nulled: %v", ds.Rows[2]["Blood_Pressure"])
	}

	// Distinct capture: Age=150 appears twice but is recorded once.
	want := map[string][]string{
		"Patient_ID":     {"PX"},
		"Age":            {"150"},
		"Gender":         {"X"},
		"Blood_Pressure": {"999/80", "120-80"},
		"Cholesterol":    {"Sky-high"},
		"Diagnosis":      {"Cured"},
	}
	if !reflect.DeepEqual(invalid, want) {
		t.Fatalf("invalid map mismatch:\n got %#v\nwant %#v", invalid, want)
	}

	// Reject fires once per nulled value, repeats included: 8 total.
	if len(rejects) != 8 {
		t.Fatalf("rejects=%d; want 8", len(rejects))
	}
	for _, r := range rejects {
		if r.Column == "" || r.Value == "" || r.Reason == "" {
			t.Fatalf("incomplete rejection: %#v", r)
		}
	}
}

/*
TestEngineApply_EmptyListsForCleanColumns checks that every rule column is
present in the result even when nothing was rejected.
*/
func TestEngineApply_EmptyListsForCleanColumns(t *testing.T) {
	ds := patientDataset(
		records.Record{"Patient_ID": "P0001", "Age": int64(34), "Gender": "M", "Blood_Pressure": "120/80", "Cholesterol": "Normal", "Diagnosis": "Healthy"},
	)

	e := Engine{Rules: Defaults()}
	invalid := e.Apply(ds)

	if len(invalid) != len(Defaults()) {
		t.Fatalf("columns in invalid map=%d; want %d", len(invalid), len(Defaults()))
	}
	for col, vals := range invalid {
		if vals == nil {
			t.Fatalf("column %s: list is nil; want empty slice", col)
		}
		if len(vals) != 0 {
			t.Fatalf("column %s: unexpected rejects %v", col, vals)
		}
	}
}

/*
TestEngineApply_Idempotent verifies the fixed-point property: running the
engine over its own output changes nothing and records nothing.
*/
func TestEngineApply_Idempotent(t *testing.T) {
	ds := patientDataset(
		records.Record{"Patient_ID": "bogus", "Age": int64(999), "Gender": "yes", "Blood_Pressure": "1/2", "Cholesterol": "x", "Diagnosis": "y"},
		records.Record{"Patient_ID": "P0009", "Age": int64(60), "Gender": "f", "Blood_Pressure": "140/90", "Cholesterol": "High", "Diagnosis": "Hypertension"},
	)

	e := Engine{Rules: Defaults()}
	e.Apply(ds)
	after := ds.Clone()

	second := e.Apply(ds)
	if !reflect.DeepEqual(ds, after) {
		t.Fatalf("second pass mutated the dataset:\n got %#v\nwant %#v", ds, after)
	}
	for col, vals := range second {
		if len(vals) != 0 {
			t.Fatalf("second pass recorded rejects for %s: %v", col, vals)
		}
	}
}

/*
TestEngineApply_SkipsNulls checks that nil and absent values are ignored by
every rule kind, including Pattern where nil can never match.
*/
func TestEngineApply_SkipsNulls(t *testing.T) {
	ds := patientDataset(
		records.Record{"Patient_ID": nil, "Age": nil, "Gender": nil, "Blood_Pressure": nil, "Cholesterol": nil, "Diagnosis": nil},
		records.Record{"Age": int64(30)}, // other columns absent
	)

	e := Engine{Rules: Defaults()}
	invalid := e.Apply(ds)

	for col, vals := range invalid {
		if len(vals) != 0 {
			t.Fatalf("null values recorded for %s: %v", col, vals)
		}
	}
}

/*
Test_checkValue_Boundaries exercises each rule kind at its edges.
*/
func Test_checkValue_Boundaries(t *testing.T) {
	byColumn := make(map[string]Rule)
	for _, ru := range Defaults() {
		byColumn[ru.Column] = ru
	}

	cases := []struct {
		name   string
		column string
		in     any
		ok     bool
		stored any
	}{
		{"id ok", "Patient_ID", "P0000", true, "P0000"},
		{"id three digits", "Patient_ID", "P123", false, nil},
		{"id five digits", "Patient_ID", "P12345", false, nil},
		{"id embedded", "Patient_ID", "xP1234x", false, nil},
		{"age min", "Age", int64(0), true, int64(0)},
		{"age max", "Age", int64(120), true, int64(120)},
		{"age over", "Age", int64(121), false, nil},
		{"age negative", "Age", int64(-1), false, nil},
		{"age numeric string", "Age", "65", true, "65"},
		{"age fractional", "Age", float64(30.5), false, nil},
		{"gender fold", "Gender", "f", true, "F"},
		{"gender bad", "Gender", "X", false, nil},
		{"cholesterol exact case", "Cholesterol", "Normal", true, "Normal"},
		{"cholesterol wrong case", "Cholesterol", "normal", false, nil},
		{"bp low edge", "Blood_Pressure", "70/40", true, "70/40"},
		{"bp high edge", "Blood_Pressure", "200/120", true, "200/120"},
		{"bp sys over", "Blood_Pressure", "201/80", false, nil},
		{"bp dia under", "Blood_Pressure", "120/39", false, nil},
		{"bp wrong sep", "Blood_Pressure", "120-80", false, nil},
		{"bp three parts", "Blood_Pressure", "120/80/60", false, nil},
		{"bp non-numeric", "Blood_Pressure", "abc/80", false, nil},
		{"diagnosis two words", "Diagnosis", "Heart Disease", true, "Heart Disease"},
		{"diagnosis unknown", "Diagnosis", "Cured", false, nil},
	}

	for _, tc := range cases {
		ru, found := byColumn[tc.column]
		if !found {
			t.Fatalf("%s: no rule for column %s", tc.name, tc.column)
		}
		stored, ok := ru.checkValue(tc.in)
		if ok != tc.ok {
			t.Errorf("%s: ok=%v; want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && stored != tc.stored {
			t.Errorf("%s: stored=%v; want %v", tc.name, stored, tc.stored)
		}
	}
}

/*
Test_toInt64 covers the scalar forms reaching Range rules after coercion.
*/
func Test_toInt64(t *testing.T) {
	cases := []struct {
		in any
		n  int64
		ok bool
	}{
		{int64(5), 5, true},
		{int(5), 5, true},
		{int32(5), 5, true},
		{float64(5), 5, true},
		{float64(5.5), 0, false},
		{" 42 ", 42, true},
		{"x", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		n, ok := toInt64(tc.in)
		if ok != tc.ok || (ok && n != tc.n) {
			t.Errorf("toInt64(%#v)=(%d,%v); want (%d,%v)", tc.in, n, ok, tc.n, tc.ok)
		}
	}
}
