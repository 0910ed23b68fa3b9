// Package retrieval executes the multi-query daily news retrieval plan
// against an LLM-backed search API, normalizes the results, and groups
// them into story clusters for extraction. An optional RSS feed source
// supplements the search results.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartinvest/markets-brief/internal/config"
	"github.com/smartinvest/markets-brief/internal/core/domain"
	"github.com/smartinvest/markets-brief/internal/llm"
	"github.com/smartinvest/markets-brief/internal/process/cluster"
)

// maxConsecutiveFailures trips the retrieval circuit breaker: after this
// many back-to-back query failures the remaining plan is abandoned.
const maxConsecutiveFailures = 2

// Result carries the clustered retrieval output plus per-run quality
// metadata.
type Result struct {
	Clusters                []*domain.StoryCluster
	SuccessfulQueries       int
	FailedQueries           int
	QueryDetails            map[string]bool
	IsSufficient            bool
	ItemsByRegion           map[string]int
	ItemsByQuery            map[string]int
	WatchlistTickersCovered []string
	ItemsDroppedNoURL       int
}

// Planner runs the retrieval plan.
type Planner struct {
	cfg    *config.Config
	client llm.Client
	feeds  *FeedSource
	logger *zerolog.Logger
}

// NewPlanner creates a retrieval planner. feeds may be nil when no RSS
// sources are configured.
func NewPlanner(cfg *config.Config, client llm.Client, feeds *FeedSource, logger *zerolog.Logger) *Planner {
	return &Planner{
		cfg:    cfg,
		client: client,
		feeds:  feeds,
		logger: logger,
	}
}

// Fetch executes the query plan, normalizes and clusters the results, and
// enforces regional balance on the cluster list. It returns a Result even
// when some queries fail; callers decide what to do with an insufficient
// run.
func (p *Planner) Fetch(ctx context.Context) (*Result, error) {
	plan := buildQueryPlan(p.cfg.MaxCandidatesPerQuery, p.cfg.WatchlistTickers)
	system := systemPrompt(p.cfg.SnippetWords)

	watchlist := upperTickers(p.cfg.WatchlistTickers)
	covered := make(map[string]struct{})

	result := &Result{
		QueryDetails:  make(map[string]bool),
		ItemsByRegion: make(map[string]int),
		ItemsByQuery:  make(map[string]int),
	}

	var candidates []domain.NewsItem

	consecutiveFailures := 0

	for i, q := range plan {
		items, err := p.runQuery(ctx, system, q, watchlist, covered, result)
		if err != nil {
			result.FailedQueries++
			result.QueryDetails[q.name] = false
			queriesTotal.WithLabelValues(q.name, "error").Inc()

			consecutiveFailures++

			p.logger.Error().Err(err).Str("query", q.name).Msg("retrieval query failed")

			if consecutiveFailures >= maxConsecutiveFailures {
				p.logger.Error().
					Int("consecutive_failures", consecutiveFailures).
					Msg("retrieval circuit breaker triggered, abandoning remaining queries")

				for _, remaining := range plan[i+1:] {
					result.QueryDetails[remaining.name] = false
					result.FailedQueries++
				}

				break
			}

			continue
		}

		candidates = append(candidates, items...)

		result.SuccessfulQueries++
		result.QueryDetails[q.name] = true
		result.ItemsByQuery[q.name] = len(items)
		queriesTotal.WithLabelValues(q.name, "ok").Inc()

		consecutiveFailures = 0

		p.logger.Info().Str("query", q.name).Int("items", len(items)).Msg("retrieval query succeeded")
	}

	candidates = append(candidates, p.fetchWatchlistFallback(ctx, system, watchlist, covered, result)...)

	if p.feeds != nil {
		feedItems := p.feeds.Fetch(ctx)
		candidates = append(candidates, feedItems...)

		p.logger.Info().Int("items", len(feedItems)).Msg("feed items added")
	}

	for _, item := range candidates {
		result.ItemsByRegion[item.Region]++
		itemsTotal.WithLabelValues(item.Region).Inc()
	}

	clusters := cluster.Cluster(candidates, cluster.Options{
		URLDedup:         true,
		TitleThreshold:   p.cfg.TitleThreshold,
		JaccardThreshold: p.cfg.JaccardThreshold,
		MaxSupporting:    p.cfg.MaxSupporting,
	})

	result.Clusters = capClusters(clusters, p.cfg.MaxCandidates)
	result.IsSufficient = result.SuccessfulQueries >= p.cfg.MinSuccessfulQueries
	result.WatchlistTickersCovered = sortedKeys(covered)

	clustersGauge.Set(float64(len(result.Clusters)))

	p.logger.Info().
		Int("successful_queries", result.SuccessfulQueries).
		Int("failed_queries", result.FailedQueries).
		Int("items", len(candidates)).
		Int("clusters", len(result.Clusters)).
		Bool("sufficient", result.IsSufficient).
		Msg("retrieval complete")

	return result, nil
}

// runQuery executes one planned query and returns the valid items.
func (p *Planner) runQuery(ctx context.Context, system string, q plannedQuery, watchlist []string, covered map[string]struct{}, result *Result) ([]domain.NewsItem, error) {
	raw, err := p.client.Chat(ctx, system, q.prompt)
	if err != nil {
		return nil, err
	}

	wire, err := parseItems(raw)
	if err != nil {
		return nil, err
	}

	var items []domain.NewsItem

	for _, w := range wire {
		item, err := normalizeItem(w, p.cfg.SnippetWords)
		if err != nil {
			result.ItemsDroppedNoURL++
			itemsDroppedTotal.WithLabelValues("invalid").Inc()

			continue
		}

		if !domainAllowed(item.URL, p.cfg.AllowedDomains) {
			itemsDroppedTotal.WithLabelValues("domain_filtered").Inc()

			continue
		}

		markCoveredTickers(item, watchlist, covered)
		items = append(items, item)
	}

	return items, nil
}

// fetchWatchlistFallback runs one targeted query when too few watchlist
// tickers got coverage from the main plan.
func (p *Planner) fetchWatchlistFallback(ctx context.Context, system string, watchlist []string, covered map[string]struct{}, result *Result) []domain.NewsItem {
	if len(watchlist) == 0 {
		return nil
	}

	if len(covered) >= p.cfg.MinWatchlistTickersCovered || len(covered) >= len(watchlist) {
		return nil
	}

	var uncovered []string

	for _, t := range watchlist {
		if _, ok := covered[t]; !ok {
			uncovered = append(uncovered, t)
		}
	}

	p.logger.Info().
		Int("covered", len(covered)).
		Int("total", len(watchlist)).
		Strs("uncovered", uncovered).
		Msg("watchlist coverage insufficient, running fallback query")

	q := fallbackWatchlistQuery(uncovered)

	items, err := p.runQuery(ctx, system, q, uncovered, covered, result)
	if err != nil {
		p.logger.Warn().Err(err).Msg("fallback watchlist query failed")
		queriesTotal.WithLabelValues(q.name, "error").Inc()

		return nil
	}

	result.ItemsByQuery[q.name] = len(items)
	queriesTotal.WithLabelValues(q.name, "ok").Inc()

	return items
}

func markCoveredTickers(item domain.NewsItem, watchlist []string, covered map[string]struct{}) {
	title := strings.ToUpper(item.Title)
	snippet := strings.ToUpper(item.Snippet)

	for _, ticker := range watchlist {
		if strings.Contains(title, ticker) || strings.Contains(snippet, ticker) {
			covered[ticker] = struct{}{}
		}
	}
}

func upperTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, strings.ToUpper(strings.TrimSpace(t)))
	}

	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
