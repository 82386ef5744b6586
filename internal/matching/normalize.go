package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// leadingArticles are stripped from the front of a normalized string.
var leadingArticles = []string{"the", "la", "le", "el", "los", "las", "les", "un", "une", "una"}

// Normalize prepares a title or artist name for comparison: lowercase,
// diacritics removed and whitespace collapsed. Leading articles are stripped
// until none remains, unless that would leave nothing. Punctuation is kept.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = stripDiacritics(cases.Lower(language.Und).String(s))
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.Join(strings.Fields(s), " ")
	for {
		stripped := stripArticle(s)
		if stripped == s || stripped == "" {
			return s
		}
		s = stripped
	}
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// stripArticle removes one leading article, including the elided "l'".
func stripArticle(s string) string {
	if rest, ok := strings.CutPrefix(s, "l'"); ok {
		return strings.TrimSpace(rest)
	}
	for _, a := range leadingArticles {
		if rest, ok := strings.CutPrefix(s, a+" "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return s
}
