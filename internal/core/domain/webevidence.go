package domain

import "sort"

// WebPage is a page that contains the queried image.
type WebPage struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// WebLabel is a best-guess label for the queried image.
type WebLabel struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// WebEntity is a weighted knowledge-graph entity associated with the image.
type WebEntity struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// WebEvidence is the result of one reverse-image search.
// It is built once per request and read-only afterwards; accessors return copies.
type WebEvidence struct {
	pages    []WebPage
	similar  []string
	labels   []WebLabel
	entities []WebEntity
}

// NewWebEvidence builds evidence from reverse-search output, copying every slice.
func NewWebEvidence(pages []WebPage, similar []string, labels []WebLabel, entities []WebEntity) *WebEvidence {
	return &WebEvidence{
		pages:    append([]WebPage(nil), pages...),
		similar:  append([]string(nil), similar...),
		labels:   append([]WebLabel(nil), labels...),
		entities: append([]WebEntity(nil), entities...),
	}
}

// Pages returns the pages with matching images, in search order.
func (w *WebEvidence) Pages() []WebPage {
	if w == nil {
		return nil
	}
	return append([]WebPage(nil), w.pages...)
}

// SimilarImages returns URLs of visually similar images.
func (w *WebEvidence) SimilarImages() []string {
	if w == nil {
		return nil
	}
	return append([]string(nil), w.similar...)
}

// Labels returns the best-guess labels.
func (w *WebEvidence) Labels() []WebLabel {
	if w == nil {
		return nil
	}
	return append([]WebLabel(nil), w.labels...)
}

// LabelTexts returns the non-empty label strings.
func (w *WebEvidence) LabelTexts() []string {
	if w == nil {
		return nil
	}
	out := make([]string, 0, len(w.labels))
	for _, l := range w.labels {
		if l.Text != "" {
			out = append(out, l.Text)
		}
	}
	return out
}

// SortedEntities returns entities ordered by descending score.
// Equal scores keep search order.
func (w *WebEvidence) SortedEntities() []WebEntity {
	if w == nil {
		return nil
	}
	out := append([]WebEntity(nil), w.entities...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// TopEntity returns the highest-weighted entity with a description.
func (w *WebEvidence) TopEntity() (WebEntity, bool) {
	for _, e := range w.SortedEntities() {
		if e.Description != "" {
			return e, true
		}
	}
	return WebEntity{}, false
}

// PageTitles returns the non-empty page titles in search order.
func (w *WebEvidence) PageTitles() []string {
	if w == nil {
		return nil
	}
	out := make([]string, 0, len(w.pages))
	for _, p := range w.pages {
		if p.Title != "" {
			out = append(out, p.Title)
		}
	}
	return out
}

// HasPages reports whether the search found any candidate pages.
func (w *WebEvidence) HasPages() bool {
	return w != nil && len(w.pages) > 0
}

// Hints derives source hints from the evidence for the given language.
func (w *WebEvidence) Hints(language string) Hints {
	h := Hints{
		Language:   language,
		Labels:     w.LabelTexts(),
		PageTitles: w.PageTitles(),
	}
	if e, ok := w.TopEntity(); ok {
		h.TopEntity = e.Description
	}
	return h
}

// PageURLs returns the non-empty page URLs in search order.
func (w *WebEvidence) PageURLs() []string {
	if w == nil {
		return nil
	}
	out := make([]string, 0, len(w.pages))
	for _, p := range w.pages {
		if p.URL != "" {
			out = append(out, p.URL)
		}
	}
	return out
}
