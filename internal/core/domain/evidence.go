package domain

import (
	"math"
	"strings"
)

// EvidenceSource names the producer of an EvidenceResult.
type EvidenceSource string

// Known evidence sources.
const (
	SourceVision         EvidenceSource = "vision"
	SourceText           EvidenceSource = "text"
	SourceVisionFallback EvidenceSource = "vision_fallback"
)

// EvidenceResult is one source's structured claim about what the image shows.
// Confidence is only meaningful when Identified is true.
type EvidenceResult struct {
	Identified  bool           `json:"identified"`
	Confidence  float64        `json:"confidence"`
	Title       string         `json:"title,omitempty"`
	Artist      string         `json:"artist,omitempty"`
	Year        string         `json:"year,omitempty"`
	Period      string         `json:"period,omitempty"`
	Technique   string         `json:"technique,omitempty"`
	Dimensions  string         `json:"dimensions,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	IsMonument  bool           `json:"isMonument"`
	Country     string         `json:"country,omitempty"`
	Source      EvidenceSource `json:"source,omitempty"`
}

// NegativeEvidence is the degraded result every failing source collapses to.
func NegativeEvidence(source EvidenceSource) EvidenceResult {
	return EvidenceResult{Identified: false, Confidence: 0, Source: source}
}

// Sanitize enforces the result invariants: confidence within [0,1],
// no country unless the subject is a monument, trimmed string fields.
func (r EvidenceResult) Sanitize() EvidenceResult {
	if math.IsNaN(r.Confidence) || r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Artist = strings.TrimSpace(r.Artist)
	r.Year = strings.TrimSpace(r.Year)
	r.Period = strings.TrimSpace(r.Period)
	r.Technique = strings.TrimSpace(r.Technique)
	r.Dimensions = strings.TrimSpace(r.Dimensions)
	r.Description = strings.TrimSpace(r.Description)
	r.Country = strings.TrimSpace(r.Country)
	if !r.IsMonument {
		r.Country = ""
	}
	if len(r.Tags) > 0 {
		tags := make([]string, 0, len(r.Tags))
		for _, t := range r.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		r.Tags = tags
	}
	return r
}

// Meets reports whether the result is identified with at least the given confidence.
func (r EvidenceResult) Meets(threshold float64) bool {
	return r.Identified && r.Confidence >= threshold
}

// Image is raw photograph bytes plus their media type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Hints carries context from earlier pipeline stages into an evidence source.
type Hints struct {
	Language   string
	Labels     []string
	TopEntity  string
	PageTitles []string
}

// IsEmpty reports whether the hints carry any web-derived context.
func (h Hints) IsEmpty() bool {
	return len(h.Labels) == 0 && h.TopEntity == "" && len(h.PageTitles) == 0
}
