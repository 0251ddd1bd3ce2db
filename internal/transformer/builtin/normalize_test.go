package builtin

import (
	"testing"

	"cleanse/pkg/records"
)

/*
TestNormalizeApply covers trimming, NBSP rewriting, empty-to-nil, and the
pass-through of non-string values.
*/
func TestNormalizeApply(t *testing.T) {
	ds := &records.Dataset{
		Columns: []string{"a", "b", "c", "d", "e"},
		Rows: []records.Record{
			{
				"a": "  padded  ",
				"b": "\u00a0nbsp\u00a0",
				"c": "   ",
				"d": int64(5),
				"e": nil,
			},
		},
	}

	out := Normalize{}.Apply(ds)
	r := out.Rows[0]

	if r["a"] != "padded" {
		t.Errorf("a=%q; want %q", r["a"], "padded")
	}
	if r["b"] != "nbsp" {
		t.Errorf("b=%q; want %q", r["b"], "nbsp")
	}
	if r["c"] != nil {
		t.Errorf("whitespace-only field not nulled: %q", r["c"])
	}
	if r["d"] != int64(5) {
		t.Errorf("non-string value mutated: %v", r["d"])
	}
	if r["e"] != nil {
		t.Errorf("nil value mutated: %v", r["e"])
	}
}

/*
TestNormalizeApply_InteriorNBSP: NBSPs inside a value become plain spaces
rather than vanishing.
*/
func TestNormalizeApply_InteriorNBSP(t *testing.T) {
	ds := &records.Dataset{
		Columns: []string{"a"},
		Rows:    []records.Record{{"a": "Heart\u00a0Disease"}},
	}

	out := Normalize{}.Apply(ds)
	if out.Rows[0]["a"] != "Heart Disease" {
		t.Fatalf("got %q; want %q", out.Rows[0]["a"], "Heart Disease")
	}
}
