package retrieval

import (
	"fmt"
	"strings"
)

// watchlistBatchSize bounds tickers per watchlist query so every ticker
// gets coverage instead of the model cherry-picking the famous ones.
const watchlistBatchSize = 3

type plannedQuery struct {
	name   string
	prompt string
}

func systemPrompt(snippetWords int) string {
	return fmt.Sprintf(`You are a professional financial news aggregator.
You must return a raw JSON array of objects. Each object must have:
- title: clear, concise headline
- source: name of the news outlet
- url: full valid URL to the article
- published_at: ISO 8601 date string
- snippet: summary capped at %d words
- region: categorical tag as requested in the query

Return ONLY the JSON array. Do not include markdown formatting or preamble.`, snippetWords)
}

// buildQueryPlan returns the daily retrieval plan in execution order:
// regional market queries first, then batched watchlist queries.
func buildQueryPlan(itemsPerQuery int, watchlistTickers []string) []plannedQuery {
	plan := []plannedQuery{
		{
			name:   "us_macro",
			prompt: fmt.Sprintf("Top %d US macro and policy news today (Fed, inflation, employment, Treasury, fiscal policy). Include source URLs. Region tag: 'us'", itemsPerQuery),
		},
		{
			name:   "us_equities",
			prompt: fmt.Sprintf("Top %d US equity market movers, sector trends, and major earnings today. Include source URLs. Region tag: 'us'", itemsPerQuery),
		},
		{
			name:   "eu_market",
			prompt: fmt.Sprintf("Top %d Eurozone macro news, ECB policy, and major European stock market movers today. Include source URLs. Region tag: 'eu'", itemsPerQuery),
		},
		{
			name:   "china_market",
			prompt: fmt.Sprintf("Top %d news on China macro, tech regulation, property market, and PBOC policy today. Include source URLs. Region tag: 'china'", itemsPerQuery),
		},
		{
			name:   "global_market",
			prompt: fmt.Sprintf("Top %d market-moving news from Japan (Yen, Nikkei, BOJ), SE Asia (TSMC, semiconductors), and Latin America (EM trends). Include source URLs. Region tag: 'global'", itemsPerQuery),
		},
	}

	for i := 0; i < len(watchlistTickers); i += watchlistBatchSize {
		end := i + watchlistBatchSize
		if end > len(watchlistTickers) {
			end = len(watchlistTickers)
		}

		batch := watchlistTickers[i:end]
		plan = append(plan, plannedQuery{
			name:   fmt.Sprintf("watchlist_batch_%d", i/watchlistBatchSize+1),
			prompt: fmt.Sprintf("Latest 2-3 news items for EACH of these tickers: %s. Include source URLs for each story. Region tag: 'watchlist'", strings.Join(batch, ", ")),
		})
	}

	return plan
}

func fallbackWatchlistQuery(uncovered []string) plannedQuery {
	return plannedQuery{
		name:   "watchlist_fallback",
		prompt: fmt.Sprintf("Latest news and developments for these specific tickers: %s. Include source URLs for each story. Region tag: 'watchlist'", strings.Join(uncovered, ", ")),
	}
}
