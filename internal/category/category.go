// Package category assigns a coarse browsing category to artworks that
// did not match a catalog entry, based on their period or style.
package category

import (
	"strings"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/matching"
)

// Category IDs.
const (
	Prehistoric       = "prehistoric"
	Ancient           = "ancient"
	Byzantine         = "byzantine"
	Medieval          = "medieval"
	Renaissance       = "renaissance"
	Mannerism         = "mannerism"
	Baroque           = "baroque"
	Rococo            = "rococo"
	Neoclassicism     = "neoclassicism"
	Romanticism       = "romanticism"
	Realism           = "realism"
	PostImpressionism = "post-impressionism"
	Impressionism     = "impressionism"
	ArtNouveau        = "art-nouveau"
	Expressionism     = "expressionism"
	Cubism            = "cubism"
	Futurism          = "futurism"
	Surrealism        = "surrealism"
	Abstract          = "abstract"
	PopArt            = "pop-art"
	Modern            = "modern"
	Contemporary      = "contemporary"
	Asian             = "asian"
	Islamic           = "islamic"
)

// minReverseLen is the shortest period that may match inside a keyword.
const minReverseLen = 4

type rule struct {
	id       string
	keywords []string
}

// rules is ordered: the first rule with a matching keyword wins, so more
// specific movements precede the broader ones they contain.
var rules = []rule{
	{PostImpressionism, []string{"post impressionis", "postimpressionis", "postimpresionis", "post impresionis", "postimpressionnis", "post impressionnis", "nachimpressionis", "pointillism", "pointillisme", "divisionismo", "cezanne", "van gogh", "gauguin", "seurat", "toulouse lautrec"}},
	{Neoclassicism, []string{"neoclassic", "neoclassico", "neoclasico", "neoclassique", "klassizismus", "canova", "jacques louis david", "ingres"}},
	{Impressionism, []string{"impressionis", "impresionis", "impressionnis", "monet", "renoir", "degas", "pissarro", "sisley", "morisot"}},
	{ArtNouveau, []string{"art nouveau", "liberty", "jugendstil", "modernismo catalan", "secession", "secessione", "klimt", "mucha", "gaudi"}},
	{Expressionism, []string{"expressionis", "espressionis", "expresionis", "expressionnis", "die brucke", "der blaue reiter", "munch", "kirchner", "schiele"}},
	{Cubism, []string{"cubis", "kubis", "picasso", "braque"}},
	{Futurism, []string{"futuris", "boccioni", "balla"}},
	{Surrealism, []string{"surrealis", "dada", "dali", "magritte", "miro", "de chirico", "metafisica"}},
	{PopArt, []string{"pop art", "warhol", "lichtenstein"}},
	{Abstract, []string{"abstract", "astratti", "astrattismo", "abstracto", "abstraction", "abstrakt", "kandinsky", "mondrian", "pollock", "rothko", "informale"}},
	{Contemporary, []string{"contemporary", "contemporanea", "contemporaneo", "contemporain", "zeitgenossisch", "street art", "21st century", "xxi secolo", "siglo xxi"}},
	{Mannerism, []string{"manneris", "manieris", "pontormo", "parmigianino", "bronzino", "el greco"}},
	{Renaissance, []string{"renaissance", "rinascimento", "rinascimentale", "renacimiento", "quattrocento", "cinquecento", "leonardo", "michelangelo", "raffaello", "raphael", "botticelli", "brunelleschi", "tiziano", "titian", "durer"}},
	{Rococo, []string{"rococo", "rokoko", "tiepolo", "fragonard", "boucher", "watteau"}},
	{Baroque, []string{"baroque", "barocco", "barroco", "barock", "seicento", "caravaggio", "bernini", "borromini", "rubens", "rembrandt", "velazquez", "vermeer", "golden age"}},
	{Romanticism, []string{"romantic", "romantis", "romantik", "turner", "delacroix", "friedrich", "goya"}},
	{Realism, []string{"realis", "courbet", "millet", "macchiaioli"}},
	{Byzantine, []string{"byzantine", "bizantino", "bizantina", "byzantin", "byzantinisch", "icon", "icona", "mosaic"}},
	{Medieval, []string{"medieval", "medievale", "middle ages", "medioevo", "moyen age", "mittelalter", "gothic", "gotico", "gothique", "gotik", "romanesque", "romanico", "romanik", "giotto", "duecento", "trecento", "carolingian"}},
	{Islamic, []string{"islamic", "islamico", "islamique", "islamisch", "moorish", "moresco", "mudejar", "ottoman", "mughal", "nasrid"}},
	{Asian, []string{"ukiyo e", "japanese", "giapponese", "japones", "japonais", "chinese", "cinese", "chino", "chinois", "ming dynasty", "qing dynasty", "tang dynasty", "edo period", "hokusai", "hiroshige", "buddhist", "hindu", "khmer"}},
	{Ancient, []string{"ancient", "antiquity", "antico", "antica", "antiguo", "antique", "antike", "classical", "classico", "greek", "greco", "grecque", "roman empire", "romano", "romana", "hellenistic", "ellenistico", "etruscan", "etrusco", "egyptian", "egizio", "egipcio", "pharaonic", "mesopotamian", "archaic"}},
	{Prehistoric, []string{"prehistoric", "preistorico", "prehistorico", "prehistorique", "vorgeschichte", "paleolithic", "neolithic", "megalithic", "cave painting"}},
	{Modern, []string{"modern", "moderno", "moderne", "modernism", "20th century", "xx secolo", "siglo xx", "novecento", "bauhaus"}},
}

// MapPeriodToCategory returns the category ID for a period or style string,
// or domain.CategoryUnknown when nothing matches.
func MapPeriodToCategory(period string) string {
	p := normalize(period)
	if p == "" {
		return domain.CategoryUnknown
	}

	for _, r := range rules {
		if p == normalize(r.id) {
			return r.id
		}
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(p, kw) || (len(p) >= minReverseLen && strings.Contains(kw, p)) {
				return r.id
			}
		}
	}
	return domain.CategoryUnknown
}

// Categories returns every category ID in rule order.
func Categories() []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.id)
	}
	return ids
}

// normalize applies catalog normalization and treats separators as spaces.
func normalize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return matching.Normalize(s)
}
