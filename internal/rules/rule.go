// Package rules implements the per-column validity checks applied to the
// patient dataset. Each column carries exactly one rule; values that fail
// their rule are nulled in place and recorded, never raised as errors.
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"cleanse/pkg/records"
)

// Kind selects the check a Rule performs. The set is closed; checkValue
// switches exhaustively over it.
type Kind int

const (
	// Pattern requires a full regexp match on the string form of the value.
	// Null values fail this check (they stay null and are not re-recorded).
	Pattern Kind = iota

	// Range requires an integer inside an inclusive [Min,Max] interval.
	Range

	// EnumSet requires membership in a fixed set of allowed strings.
	// With FoldCase set, the value is uppercased before the lookup and the
	// folded form is what ends up stored.
	EnumSet

	// StructuredPair requires a "FIRST<sep>SECOND" string where both parts
	// parse as integers inside their own bounds. Any parse failure fails
	// the check (fail-closed) rather than producing an error.
	StructuredPair
)

// Bounds is an inclusive integer interval.
type Bounds struct {
	Min, Max int64
}

// contains reports whether n lies inside the interval.
func (b Bounds) contains(n int64) bool { return n >= b.Min && n <= b.Max }

// Rule is a declarative validity check for one column. Exactly one variant's
// fields are populated, selected by Kind. Rules are immutable once built.
type Rule struct {
	Column string
	Kind   Kind

	// Pattern variant.
	Pattern *regexp.Regexp

	// Range variant.
	Range Bounds

	// EnumSet variant.
	Allowed  map[string]struct{}
	FoldCase bool

	// StructuredPair variant.
	Sep           string
	First, Second Bounds

	// Message is the human-readable violation description used in logs.
	Message string
}

// Defaults returns the fixed rule table for the patient dataset.
func Defaults() []Rule {
	return []Rule{
		{
			Column:  "Patient_ID",
			Kind:    Pattern,
			Pattern: regexp.MustCompile(`^P\d{4}$`),
			Message: "patient id must match P followed by four digits",
		},
		{
			Column:  "Age",
			Kind:    Range,
			Range:   Bounds{Min: 0, Max: 120},
			Message: "age must be between 0 and 120",
		},
		{
			Column:   "Gender",
			Kind:     EnumSet,
			Allowed:  set("M", "F"),
			FoldCase: true,
			Message:  "gender must be M or F",
		},
		{
			Column:  "Cholesterol",
			Kind:    EnumSet,
			Allowed: set("Normal", "High", "Borderline"),
			Message: "cholesterol must be Normal, High, or Borderline",
		},
		{
			Column:  "Diagnosis",
			Kind:    EnumSet,
			Allowed: set("Healthy", "Heart Disease", "Hypertension", "Monitor", "At Risk"),
			Message: "unrecognized diagnosis",
		},
		{
			Column:  "Blood_Pressure",
			Kind:    StructuredPair,
			Sep:     "/",
			First:   Bounds{Min: 70, Max: 200},
			Second:  Bounds{Min: 40, Max: 120},
			Message: "blood pressure must be SYS/DIA with 70-200 over 40-120",
		},
	}
}

// checkValue evaluates the rule against a single non-null value. It returns
// the value to store when the check passes (EnumSet with FoldCase may return
// a normalized form; every other kind returns the input unchanged).
func (ru Rule) checkValue(v any) (stored any, ok bool) {
	switch ru.Kind {
	case Pattern:
		s := records.AsString(v)
		if ru.Pattern.MatchString(s) {
			return v, true
		}
		return nil, false

	case Range:
		n, numeric := toInt64(v)
		if numeric && ru.Range.contains(n) {
			return v, true
		}
		return nil, false

	case EnumSet:
		s := records.AsString(v)
		if ru.FoldCase {
			s = strings.ToUpper(s)
		}
		if _, found := ru.Allowed[s]; found {
			return s, true
		}
		return nil, false

	case StructuredPair:
		s := records.AsString(v)
		parts := strings.Split(s, ru.Sep)
		if len(parts) != 2 {
			return nil, false
		}
		first, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		second, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err1 != nil || err2 != nil {
			return nil, false
		}
		if ru.First.contains(first) && ru.Second.contains(second) {
			return v, true
		}
		return nil, false
	}

	// Unreachable for the closed Kind set.
	return v, true
}

// toInt64 converts post-coercion scalar forms to int64.
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), float64(int64(t)) == t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func set(vals ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}
