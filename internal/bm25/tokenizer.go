package bm25

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Tokenize splits s into lowercased, case-folded tokens: camelCase and
// snake_case/kebab-case identifiers are split on case transitions and
// separators, tokens shorter than 2 or longer than 64 runes are dropped,
// and there is no stopword list — a term search for "the" or "if" should
// still find an identifier literally named that.
func Tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := foldCaser.String(cur.String())
		cur.Reset()
		n := len([]rune(tok))
		if n >= 2 && n <= 64 {
			tokens = append(tokens, tok)
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if cur.Len() > 0 && unicode.IsUpper(r) && i > 0 {
				prev := runes[i-1]
				// camelCase boundary: lower-or-digit followed by upper.
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					flush()
				}
			}
			cur.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Normalize case-folds a raw query term the same way Tokenize would,
// without splitting it — used for exact-match filter values like
// `kind:Function` where the caller already knows the token boundary.
func Normalize(s string) string {
	return foldCaser.String(strings.ToLower(s))
}
