package collector

import (
	"net/url"
	"sort"
	"strings"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// trustedMarkers are case-insensitive substrings of URLs from sources that
// reliably describe artworks: encyclopedias, museums, heritage bodies,
// religious architecture and cultural tourism, in several languages.
var trustedMarkers = []string{
	// Encyclopedic and reference.
	"wikipedia.org", "wikimedia.org", "wikidata.org", "britannica.com", "treccani.it",
	"smarthistory.org", "wga.hu", "wikiart.org", "artsandculture.google.com",
	// Museums.
	"museum", "museo", "musee", "musée", "museu", "louvre", "uffizi", "prado",
	"metmuseum", "rijksmuseum", "nationalgallery", "hermitage", "vatican", "tate.org",
	"moma.org", "guggenheim", "getty.edu", "pinacoteca", "galleria", "gallery",
	// Heritage and monuments.
	"unesco", "heritage", "patrimonio", "patrimoine", "beniculturali", "monumen",
	"denkmal", "culturaitalia", "historicengland",
	// Religious architecture.
	"cathedral", "cattedrale", "duomo", "basilica", "chiesa", "church", "iglesia",
	"eglise", "église", "abbey", "abbazia", "kirche",
	// Cultural tourism.
	"visit", "turismo", "tourism", "tripadvisor", "lonelyplanet", "atlasobscura",
}

// isTrusted reports whether a URL contains any trusted marker.
func isTrusted(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, m := range trustedMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// RankURLs returns candidate page URLs with trusted sources first.
// The sort is stable, so pages within each group keep search order.
// Empty, duplicate and non-http(s) URLs are dropped.
func RankURLs(pages []domain.WebPage) []string {
	seen := make(map[string]struct{}, len(pages))
	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		raw := strings.TrimSpace(p.URL)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		urls = append(urls, raw)
	}

	sort.SliceStable(urls, func(i, j int) bool {
		return isTrusted(urls[i]) && !isTrusted(urls[j])
	})
	return urls
}
