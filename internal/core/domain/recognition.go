package domain

// RecognitionRequest is one user's request to identify a photograph.
type RecognitionRequest struct {
	UserID           string
	Image            Image
	Language         string
	SaveToCollection bool
}

// ArtworkView is the client-facing shape of an identified artwork.
type ArtworkView struct {
	Title            string   `json:"title,omitempty"`
	Artist           string   `json:"artist,omitempty"`
	Year             string   `json:"year,omitempty"`
	Period           string   `json:"period,omitempty"`
	Technique        string   `json:"technique,omitempty"`
	Dimensions       string   `json:"dimensions,omitempty"`
	Description      string   `json:"description,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	IsMonument       bool     `json:"isMonument"`
	Country          string   `json:"country,omitempty"`
	Confidence       float64  `json:"confidence"`
	Category         string   `json:"category,omitempty"`
	CatalogEntryID   string   `json:"catalogEntryId,omitempty"`
	CollectionItemID string   `json:"collectionItemId,omitempty"`
	Stage            Stage    `json:"stage"`
}

// RecognitionResponse is the boundary result returned to clients.
type RecognitionResponse struct {
	Success           bool         `json:"success"`
	Identified        bool         `json:"identified"`
	Artwork           *ArtworkView `json:"artwork"`
	SavedToCollection bool         `json:"savedToCollection"`
	Message           string       `json:"message"`
}

// ViewOf flattens an accepted outcome into the client-facing view.
// Matched entries contribute their catalog title and artist.
func ViewOf(o Outcome, language string) *ArtworkView {
	r := o.Evidence
	v := &ArtworkView{
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
		Confidence:  r.Confidence,
		Category:    o.Category,
		Stage:       o.Stage,
	}
	if o.Match != nil {
		v.CatalogEntryID = o.Match.ID
		v.Title, v.Artist = o.Match.Localized(language)
		if o.Match.Category != "" {
			v.Category = o.Match.Category
		}
	}
	return v
}
