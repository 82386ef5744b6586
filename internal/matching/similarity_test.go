package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("mona lisa", "mona lisa"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Zero(t, Similarity("", "mona lisa"))
	assert.Equal(t, 1.0, Similarity("lisa mona", "mona lisa"), "token order is ignored")
	assert.Equal(t, 1.0, Similarity("leonardo", "leonardo da vinci"), "extra tokens are ignored")
	assert.Less(t, Similarity("leonardo", "anonymous"), 0.9)
	assert.InDelta(t, 0.9, Similarity("abcdefghij", "abcdefghik"), 1e-9)
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"leonardo", "leonardo da vinci"},
		{"starry night", "the night cafe"},
		{"caravaggio", "michelangelo merisi da caravaggio"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestSimilarity_Bounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "zzzzzzzz"},
		{"x y z", "a b c d e f"},
		{"ñandú", "nandu"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
