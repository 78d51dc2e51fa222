// Package fold normalizes free text for comparison: compatibility
// decomposition, diacritic removal, and Unicode case folding.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// String returns s decomposed, stripped of combining marks, recomposed, and
// case folded. "Café NOTICE" folds to "cafe notice".
func String(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
		cases.Fold(),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokens folds s and splits it on every rune that is not a letter or digit.
func Tokens(s string) []string {
	return strings.FieldsFunc(String(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Slug folds s and joins its tokens with sep, truncating to at most limit
// bytes on a token boundary. A zero limit disables truncation.
func Slug(s, sep string, limit int) string {
	var b strings.Builder
	for _, tok := range Tokens(s) {
		next := len(tok)
		if b.Len() > 0 {
			next += len(sep)
		}
		if limit > 0 && b.Len()+next > limit {
			if b.Len() == 0 {
				b.WriteString(truncate(tok, limit))
			}
			break
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(tok)
	}
	return b.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
