package records

import (
	"reflect"
	"testing"
	"time"
)

/*
TestNullCount verifies null counting over the column list: nil values and
absent keys both count, and columns outside the list are ignored.
*/
func TestNullCount(t *testing.T) {
	cols := []string{"a", "b", "c"}
	cases := []struct {
		name string
		rec  Record
		want int
	}{
		{"no nulls", Record{"a": "x", "b": int64(1), "c": "y"}, 0},
		{"one nil", Record{"a": nil, "b": "x", "c": "y"}, 1},
		{"missing key counts", Record{"a": "x", "c": "y"}, 1},
		{"all null", Record{"a": nil, "b": nil, "c": nil}, 3},
		{"extra column ignored", Record{"a": "x", "b": "y", "c": "z", "d": nil}, 0},
	}
	for _, tc := range cases {
		if got := tc.rec.NullCount(cols); got != tc.want {
			t.Errorf("%s: NullCount=%d; want %d", tc.name, got, tc.want)
		}
	}
}

/*
TestClone verifies that dataset clones share no structure with the original:
mutating a cloned row or column slice must not leak back.
*/
func TestClone(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"a", "b"},
		Rows: []Record{
			{"a": "1", "b": nil},
			{"a": int64(2), "b": "x"},
		},
	}

	cp := ds.Clone()
	if !reflect.DeepEqual(cp, ds) {
		t.Fatalf("clone differs from original: %#v vs %#v", cp, ds)
	}

	cp.Columns[0] = "mutated"
	cp.Rows[0]["a"] = "mutated"
	if ds.Columns[0] != "a" || ds.Rows[0]["a"] != "1" {
		t.Fatalf("mutating the clone leaked into the original: %#v", ds)
	}
}

/*
TestAsString covers the scalar conversions the pipeline relies on, in
particular nil -> "" (the CSV writer's empty-field form) and int64 without
a fractional part.
*/
func TestAsString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{42, "42"},
		{int32(7), "7"},
		{int64(150), "150"},
		{float64(1.5), "1.5"},
		{true, "true"},
		{false, "false"},
		{time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC), "2025-11-09T00:00:00Z"},
		{struct{}{}, ""},
	}
	for _, tc := range cases {
		if got := AsString(tc.in); got != tc.want {
			t.Errorf("AsString(%#v)=%q; want %q", tc.in, got, tc.want)
		}
	}
}
