package csv

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes runes, drops combining marks, and recomposes,
// so "Pacienť" folds to "Pacient". Built once; transform.String is stateless
// per call.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldDiacritics strips diacritic marks from s. On transform failure the
// input is returned unchanged; header folding is best-effort.
func foldDiacritics(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}
