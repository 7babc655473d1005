package wholesale

import (
	"strings"
	"unicode/utf8"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/models"
)

const (
	lowPriceCeiling = 20000

	// Percent of retail price.
	lowMinPct   = 5
	minPct      = 10
	lowFloorPct = 5
	floorPct    = 20
	ceilPct     = 80

	// Accessory-marked names at least this long are treated as kits.
	kitNameRunes = 15
)

// Filter applies the relevance, price-band and bulk/shipping stages.
type Filter struct {
	vocab configs.Vocabulary
}

func NewFilter(vocab configs.Vocabulary) *Filter {
	return &Filter{vocab: vocab}
}

// Tokens splits keyword into content tokens: one trailing particle is
// stripped and tokens shorter than two runes are dropped.
func (f *Filter) Tokens(keyword string) []string {
	var tokens []string
	for _, field := range strings.Fields(keyword) {
		token := f.stripParticle(field)
		if utf8.RuneCountInString(token) >= 2 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func (f *Filter) stripParticle(token string) string {
	best := ""
	for _, p := range f.vocab.Particles {
		if len(p) > len(best) && strings.HasSuffix(token, p) {
			best = p
		}
	}
	if best == "" {
		return token
	}
	stripped := strings.TrimSuffix(token, best)
	if utf8.RuneCountInString(stripped) < 2 {
		return token
	}
	return stripped
}

// Relevant reports whether name matches keyword: the whole keyword ignoring
// whitespace, or for multi-token keywords any one content token.
func (f *Filter) Relevant(keyword, name string) bool {
	compactName := compact(name)
	if strings.Contains(compactName, compact(keyword)) {
		return true
	}
	if len(strings.Fields(keyword)) < 2 {
		return false
	}
	for _, token := range f.Tokens(keyword) {
		if strings.Contains(compactName, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// InPriceBand checks price against the retail-relative bounds. Both bounds
// are inclusive.
func InPriceBand(retail, price int) bool {
	lowerPct, floor := minPct, floorPct
	if retail <= lowPriceCeiling {
		lowerPct, floor = lowMinPct, lowFloorPct
	}
	p := int64(price) * 100
	r := int64(retail)
	if p < r*int64(lowerPct) || p < r*int64(floor) {
		return false
	}
	return p <= r*ceilPct
}

// IsBareAccessory flags accessory or packaging listings, except long titles
// that still match the keyword.
func (f *Filter) IsBareAccessory(keyword, name string) bool {
	if !containsAny(name, f.vocab.AccessoryMarkers) {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) >= kitNameRunes && f.Relevant(keyword, name) {
		return false
	}
	return true
}

// ShippingExcluded flags freight listings always and bulky goods unless the
// keyword is on the lightweight allowlist.
func (f *Filter) ShippingExcluded(keyword, name string) bool {
	if containsAny(name, f.vocab.FreightMarkers) {
		return true
	}
	if !containsAny(name, f.vocab.BulkyMarkers) {
		return false
	}
	kw := compact(keyword)
	for _, allowed := range f.vocab.LightweightAllowlist {
		if strings.Contains(kw, compact(allowed)) {
			return false
		}
	}
	return true
}

// Evaluate runs the three stages in order and returns the first stage that
// rejects the listing, or "" when it survives.
func (f *Filter) Evaluate(keyword string, retail int, listing models.RawListing) models.RejectionStage {
	switch {
	case !f.Relevant(keyword, listing.Name):
		return models.StageRelevance
	case !InPriceBand(retail, listing.Price), f.IsBareAccessory(keyword, listing.Name):
		return models.StagePriceBand
	case f.ShippingExcluded(keyword, listing.Name):
		return models.StageBulkShipping
	}
	return ""
}

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
