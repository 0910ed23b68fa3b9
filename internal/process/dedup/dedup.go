package dedup

import "github.com/smartinvest/markets-brief/internal/core/domain"

// Deduplicate collapses a flat item list by canonical URL and fuzzy title
// match, keeping the member with the longest snippet for each duplicate
// pair. Input order of survivors is preserved. Used for pre-clustering
// cleanup of single-query result sets.
func Deduplicate(items []domain.NewsItem, titleThreshold float64) []domain.NewsItem {
	var unique []domain.NewsItem

	seen := make(map[string]int) // canonical URL -> index in unique

	for _, item := range items {
		canon := CanonicalURL(item.URL)

		if idx, ok := seen[canon]; ok {
			if len(item.Snippet) > len(unique[idx].Snippet) {
				unique[idx] = item
			}

			continue
		}

		if idx, ok := findSimilarTitle(unique, item.Title, titleThreshold); ok {
			if len(item.Snippet) > len(unique[idx].Snippet) {
				unique[idx] = item
			}

			continue
		}

		seen[canon] = len(unique)
		unique = append(unique, item)
	}

	return unique
}

func findSimilarTitle(items []domain.NewsItem, title string, threshold float64) (int, bool) {
	for idx, existing := range items {
		if TitleSimilarity(title, existing.Title) > threshold {
			return idx, true
		}
	}

	return 0, false
}
