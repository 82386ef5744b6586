package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/artid/internal/core/domain"
)

func TestRankURLs_TrustedFirstStable(t *testing.T) {
	pages := []domain.WebPage{
		{URL: "https://blog.example.com/my-trip"},
		{URL: "https://en.wikipedia.org/wiki/Mona_Lisa"},
		{URL: "https://shop.example.com/poster"},
		{URL: "https://www.louvre.fr/en/explore/the-palace"},
		{URL: "https://forum.example.com/thread/1"},
	}

	got := RankURLs(pages)

	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Mona_Lisa",
		"https://www.louvre.fr/en/explore/the-palace",
		"https://blog.example.com/my-trip",
		"https://shop.example.com/poster",
		"https://forum.example.com/thread/1",
	}, got)
}

func TestRankURLs_DropsInvalidAndDuplicates(t *testing.T) {
	pages := []domain.WebPage{
		{URL: ""},
		{URL: "   "},
		{URL: "ftp://files.example.com/a.html"},
		{URL: "javascript:alert(1)"},
		{URL: "https://example.com/a"},
		{URL: "https://example.com/a"},
		{URL: "/relative/path"},
	}

	assert.Equal(t, []string{"https://example.com/a"}, RankURLs(pages))
}

func TestRankURLs_CaseInsensitiveMarkers(t *testing.T) {
	got := RankURLs([]domain.WebPage{
		{URL: "https://example.com/x"},
		{URL: "https://WWW.MUSEODELPRADO.ES/coleccion"},
	})

	assert.Equal(t, "https://WWW.MUSEODELPRADO.ES/coleccion", got[0])
}

func TestRankURLs_Empty(t *testing.T) {
	assert.Empty(t, RankURLs(nil))
}
