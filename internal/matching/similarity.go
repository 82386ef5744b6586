package matching

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two normalized strings in [0,1], where 1 means equal.
// It is the best of the whole-string ratio, the ratio after sorting tokens,
// and the best ratio of the shorter string against any equally long run of
// tokens in the longer one, so word order and extra words cost little.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	best := ratio(a, b)
	if s := ratio(sortTokens(a), sortTokens(b)); s > best {
		best = s
	}
	if s := windowRatio(a, b); s > best {
		best = s
	}
	return best
}

// ratio is one minus the edit distance over the longer rune length.
func ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func windowRatio(a, b string) float64 {
	short, long := strings.Fields(a), strings.Fields(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 || len(short) == len(long) {
		return 0
	}

	needle := strings.Join(short, " ")
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if s := ratio(needle, strings.Join(long[i:i+len(short)], " ")); s > best {
			best = s
		}
	}
	return best
}
