package domain

import "time"

// LocalizedFields holds translated display fields for a catalog entry.
type LocalizedFields struct {
	Title       string `json:"title,omitempty"`
	ArtistName  string `json:"artistName,omitempty"`
	Description string `json:"description,omitempty"`
}

// CatalogEntry is a curated, known artwork or monument.
// The core treats entries as read-only.
type CatalogEntry struct {
	ID           string                     `json:"id"`
	Title        string                     `json:"title"`
	ArtistName   string                     `json:"artistName"`
	Category     string                     `json:"category,omitempty"`
	Translations map[string]LocalizedFields `json:"translations,omitempty"`
}

// Localized returns the entry's title and artist for the given language,
// falling back to the base fields where no translation exists.
func (e CatalogEntry) Localized(language string) (title, artist string) {
	title, artist = e.Title, e.ArtistName
	if t, ok := e.Translations[language]; ok {
		if t.Title != "" {
			title = t.Title
		}
		if t.ArtistName != "" {
			artist = t.ArtistName
		}
	}
	return title, artist
}

// Snapshot is the recognized data persisted with a custom collection item.
type Snapshot struct {
	Title       string   `json:"title,omitempty"`
	Artist      string   `json:"artist,omitempty"`
	Year        string   `json:"year,omitempty"`
	Period      string   `json:"period,omitempty"`
	Technique   string   `json:"technique,omitempty"`
	Dimensions  string   `json:"dimensions,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsMonument  bool     `json:"isMonument"`
	Country     string   `json:"country,omitempty"`
	Category    string   `json:"category,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// SnapshotOf copies the evidence fields into a snapshot with the given category.
func SnapshotOf(r EvidenceResult, category string) Snapshot {
	return Snapshot{
		Title:       r.Title,
		Artist:      r.Artist,
		Year:        r.Year,
		Period:      r.Period,
		Technique:   r.Technique,
		Dimensions:  r.Dimensions,
		Description: r.Description,
		Tags:        append([]string(nil), r.Tags...),
		IsMonument:  r.IsMonument,
		Country:     r.Country,
		Category:    category,
		Confidence:  r.Confidence,
	}
}

// CollectionItem is one saved recognition in a user's collection.
// CatalogEntryID is set when the recognition matched a catalog entry.
type CollectionItem struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	CatalogEntryID *string   `json:"catalogEntryId,omitempty"`
	Snapshot       Snapshot  `json:"snapshot"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsLinked reports whether the item references a catalog entry.
func (c CollectionItem) IsLinked() bool {
	return c.CatalogEntryID != nil && *c.CatalogEntryID != ""
}
