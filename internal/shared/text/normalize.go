package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents lowercases s and strips combining diacritical marks,
// so "Lòndon" folds to "london".
func FoldAccents(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}
