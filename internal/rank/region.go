package rank

import (
	"strings"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

// Uppercased region labels used throughout ranking. Retrieval tags items
// with lowercase region strings; ranking works with the uppercase form of
// the cluster primary's tag.
const (
	regionUS        = "US"
	regionEU        = "EU"
	regionChina     = "CHINA"
	regionGlobal    = "GLOBAL"
	regionOther     = "OTHER"
	regionWatchlist = "WATCHLIST"
)

var chinaHintKeywords = []string{"china", "chinese", "pboc", "shanghai", "hong kong"}

var europeHintKeywords = []string{"europe", "euro", "ecb", "germany", "france", "uk", "london"}

// regionFromCluster resolves a card's region from its originating cluster.
// Returns "" when the cluster is unknown.
func regionFromCluster(card domain.FactCard, clusters map[string]*domain.StoryCluster) string {
	c, ok := clusters[card.StoryID]
	if !ok {
		return ""
	}

	region := strings.ToUpper(c.Primary.Region)
	if region == "" {
		return regionOther
	}

	return region
}

// inferRegion guesses a region from card text when the cluster lookup
// misses. US is the default focus region.
func inferRegion(card domain.FactCard) string {
	text := strings.ToLower(card.Entity + " " + card.Trend)

	for _, kw := range chinaHintKeywords {
		if strings.Contains(text, kw) {
			return regionChina
		}
	}

	for _, kw := range europeHintKeywords {
		if strings.Contains(text, kw) {
			return regionEU
		}
	}

	return regionUS
}

// resolveRegion applies the structured lookup first and falls back to
// keyword inference on a miss. Never fails.
func resolveRegion(card domain.FactCard, clusters map[string]*domain.StoryCluster) string {
	if region := regionFromCluster(card, clusters); region != "" {
		return region
	}

	return inferRegion(card)
}
