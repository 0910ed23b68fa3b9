package retrieval

import (
	"github.com/smartinvest/markets-brief/internal/core/domain"
)

const maxWatchlistClusters = 3

// capClusters enforces regional balance on the cluster list and orders it
// for extraction: watchlist clusters lead with up to three slots, then US
// with 60% of the budget, EU and China with 10% each, then whatever room
// remains is filled from the leftover pool in arrival order. The list is
// always regrouped this way so watchlist coverage survives any downstream
// truncation, and the result never exceeds maxCandidates.
func capClusters(clusters []*domain.StoryCluster, maxCandidates int) []*domain.StoryCluster {
	groups := make(map[string][]*domain.StoryCluster)
	for _, c := range clusters {
		groups[c.Primary.Region] = append(groups[c.Primary.Region], c)
	}

	quotas := []struct {
		region string
		slots  int
	}{
		{domain.RegionWatchlist, maxWatchlistClusters},
		{domain.RegionUS, maxCandidates * 60 / 100},
		{domain.RegionEU, maxCandidates * 10 / 100},
		{domain.RegionChina, maxCandidates * 10 / 100},
	}

	taken := make(map[*domain.StoryCluster]struct{})
	capped := make([]*domain.StoryCluster, 0, maxCandidates)

	for _, q := range quotas {
		slots := q.slots

		for _, c := range groups[q.region] {
			if slots == 0 {
				break
			}

			slots--
			taken[c] = struct{}{}

			capped = append(capped, c)
		}
	}

	for _, c := range clusters {
		if len(capped) >= maxCandidates {
			break
		}

		if _, ok := taken[c]; ok {
			continue
		}

		capped = append(capped, c)
	}

	if len(capped) > maxCandidates {
		capped = capped[:maxCandidates]
	}

	return capped
}
