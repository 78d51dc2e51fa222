package matching

import (
	"slices"
	"unicode/utf8"

	"github.com/JaimeStill/scrivener/pkg/fold"
)

// minPrefixRunes is the shortest token that can earn partial credit by prefix.
const minPrefixRunes = 4

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "i": true, "in": true,
	"is": true, "it": true, "me": true, "my": true, "need": true, "of": true,
	"on": true, "or": true, "please": true, "the": true, "to": true, "want": true,
	"with": true,
}

// terms folds s into distinct non-stopword tokens in order of appearance.
func terms(s string) []string {
	var out []string
	for _, tok := range fold.Tokens(s) {
		if stopwords[tok] || slices.Contains(out, tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// credit scores one field token against the query: 1 for an exact token,
// 0.5 when one is a prefix of the other and the shorter is long enough.
func credit(token string, query []string) float64 {
	best := 0.0
	for _, q := range query {
		if q == token {
			return 1
		}
		if prefixed(q, token) {
			best = 0.5
		}
	}
	return best
}

func prefixed(a, b string) bool {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if utf8.RuneCountInString(short) < minPrefixRunes {
		return false
	}
	return len(long) >= len(short) && long[:len(short)] == short
}
