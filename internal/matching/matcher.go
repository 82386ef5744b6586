package matching

import (
	"github.com/custodia-labs/artid/internal/core/domain"
)

// DefaultThreshold is the minimum similarity for both matching stages.
const DefaultThreshold = 0.90

// Matcher finds the catalog entry an identification refers to.
type Matcher struct {
	// Threshold is the minimum similarity a title or artist must reach (default: 0.90).
	Threshold float64
}

// NewMatcher creates a matcher with the given threshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Report describes how a match was decided.
type Report struct {
	// Entry is the winning entry, or nil.
	Entry *domain.CatalogEntry

	// TitleHits counts entries that passed the title stage.
	TitleHits int

	// ArtistEvaluated reports whether the artist stage ran at all.
	ArtistEvaluated bool

	// ArtistHits counts title survivors that passed the artist stage.
	ArtistHits int

	TitleScore  float64
	ArtistScore float64
}

// Match returns the best entry for the title and artist, or nil.
func (m *Matcher) Match(title, artist string, entries []domain.CatalogEntry, language string) *domain.CatalogEntry {
	return m.Explain(title, artist, entries, language).Entry
}

// Explain runs the title stage over all entries, then the artist stage over
// the title survivors only. The highest artist score wins; ties keep input order.
func (m *Matcher) Explain(title, artist string, entries []domain.CatalogEntry, language string) Report {
	threshold := m.threshold()
	var report Report

	nt := Normalize(title)
	if nt == "" {
		return report
	}

	type survivor struct {
		index int
		score float64
	}
	var survivors []survivor
	for i := range entries {
		if s := bestOf(nt, titleFields(entries[i], language)); s >= threshold {
			survivors = append(survivors, survivor{index: i, score: s})
		}
	}
	report.TitleHits = len(survivors)
	if len(survivors) == 0 {
		return report
	}

	report.ArtistEvaluated = true
	na := Normalize(artist)
	winner, winnerScore := -1, 0.0
	for _, sv := range survivors {
		s := bestOf(na, artistFields(entries[sv.index], language))
		if s < threshold {
			continue
		}
		report.ArtistHits++
		if winner < 0 || s > winnerScore {
			winner, winnerScore = sv.index, s
			report.TitleScore = sv.score
		}
	}
	if winner < 0 {
		return report
	}

	entry := entries[winner]
	report.Entry = &entry
	report.ArtistScore = winnerScore
	return report
}

func (m *Matcher) threshold() float64 {
	if m == nil || m.Threshold <= 0 || m.Threshold > 1 {
		return DefaultThreshold
	}
	return m.Threshold
}

// titleFields returns the base title, the requested language's title and
// any other translated titles.
func titleFields(e domain.CatalogEntry, language string) []string {
	return localizedFields(e.Title, e.Translations, language, func(f domain.LocalizedFields) string { return f.Title })
}

func artistFields(e domain.CatalogEntry, language string) []string {
	return localizedFields(e.ArtistName, e.Translations, language, func(f domain.LocalizedFields) string { return f.ArtistName })
}

func localizedFields(base string, translations map[string]domain.LocalizedFields, language string, pick func(domain.LocalizedFields) string) []string {
	fields := []string{base}
	if t, ok := translations[language]; ok && pick(t) != "" {
		fields = append(fields, pick(t))
	}
	for lang, t := range translations {
		if lang != language && pick(t) != "" {
			fields = append(fields, pick(t))
		}
	}
	return fields
}

// bestOf returns the highest similarity of the normalized needle against any field.
func bestOf(needle string, fields []string) float64 {
	best := 0.0
	for _, f := range fields {
		if s := Similarity(needle, Normalize(f)); s > best {
			best = s
		}
	}
	return best
}
