package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegativeEvidence(t *testing.T) {
	r := NegativeEvidence(SourceVision)

	assert.False(t, r.Identified)
	assert.Zero(t, r.Confidence)
	assert.Equal(t, SourceVision, r.Source)
}

func TestEvidenceResult_Sanitize(t *testing.T) {
	t.Run("drops country for non-monuments", func(t *testing.T) {
		r := EvidenceResult{Identified: true, Confidence: 0.7, Country: "Italy"}.Sanitize()
		assert.Empty(t, r.Country)
	})

	t.Run("keeps country for monuments", func(t *testing.T) {
		r := EvidenceResult{Identified: true, IsMonument: true, Country: " Italy "}.Sanitize()
		assert.Equal(t, "Italy", r.Country)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		assert.Equal(t, 1.0, EvidenceResult{Confidence: 3}.Sanitize().Confidence)
		assert.Equal(t, 0.0, EvidenceResult{Confidence: -1}.Sanitize().Confidence)
		assert.Equal(t, 0.0, EvidenceResult{Confidence: math.NaN()}.Sanitize().Confidence)
	})

	t.Run("trims and drops blank tags", func(t *testing.T) {
		r := EvidenceResult{Tags: []string{" oil ", "", "  ", "portrait"}}.Sanitize()
		assert.Equal(t, []string{"oil", "portrait"}, r.Tags)
	})
}

func TestEvidenceResult_Meets(t *testing.T) {
	assert.True(t, EvidenceResult{Identified: true, Confidence: 0.6}.Meets(0.6))
	assert.False(t, EvidenceResult{Identified: true, Confidence: 0.59}.Meets(0.6))
	assert.False(t, EvidenceResult{Identified: false, Confidence: 1}.Meets(0.6))
}

func TestHints_IsEmpty(t *testing.T) {
	assert.True(t, Hints{Language: "en"}.IsEmpty())
	assert.False(t, Hints{TopEntity: "Mona Lisa"}.IsEmpty())
}
