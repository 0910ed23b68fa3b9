// Package rank scores extracted fact cards and partitions them into the
// brief's output buckets under coverage constraints: guaranteed watchlist
// coverage, regional balance in the top stories, entity diversity, and
// de-prioritization of analyst price-target filler.
package rank

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

const (
	topStoriesCap = 5

	supportingBoostStep  = 0.15
	nonUSBoost           = 1.10
	analystTargetPenalty = 0.70
)

// macroKeywords flags macro/policy language anywhere in a card's text.
var macroKeywords = []string{
	"fed", "fomc", "central bank", "ecb", "boj", "pboc", "interest rates",
	"inflation", "cpi", "pce", "gdp", "growth", "recession", "stimulus",
	"monetary policy", "fiscal policy", "treasury", "yield curve", "employment",
	"unemployment", "payroll", "labor market", "deficit", "debt ceiling",
	"quantitative easing", "tightening", "hawkish", "dovish", "rate hike",
	"rate cut", "trade balance", "retail sales", "consumer spending",
}

// macroEntities flags cards whose entity is itself a macro institution.
var macroEntities = []string{"fed", "ecb", "boj", "pboc", "treasury", "biden", "trump", "government"}

// Scorer supplies sentiment input to ranking. A nil Scorer is valid and
// degrades to a neutral multiplier and no mood summary.
type Scorer interface {
	// Boost returns a score multiplier in [boostMin, boostMax] reflecting
	// how newsworthy the card's sentiment extremity makes it.
	Boost(card domain.FactCard, boostMin, boostMax float64) float64

	// Mood aggregates sentiment over all cards for the brief header.
	Mood(cards []domain.FactCard) *domain.MoodSummary
}

// Config controls scoring and bucket construction.
type Config struct {
	WatchlistTickers           []string
	UseSentimentBoost          bool
	SentimentBoostMin          float64
	SentimentBoostMax          float64
	RequireUSInTop5            bool
	RequireEUInTop5            bool
	RequireChinaInTop5         bool
	DeprioritizeAnalystTargets bool
	AnalystTargetKeywords      []string
}

// DefaultConfig returns the standard ranking configuration.
func DefaultConfig() Config {
	return Config{
		UseSentimentBoost:          true,
		SentimentBoostMin:          0.95,
		SentimentBoostMax:          1.15,
		RequireUSInTop5:            true,
		RequireEUInTop5:            true,
		RequireChinaInTop5:         true,
		DeprioritizeAnalystTargets: true,
		AnalystTargetKeywords: []string{
			"price target", "analyst rating", "upgraded", "downgraded", "initiated coverage",
		},
	}
}

// Engine ranks fact cards into buckets. It is pure over its inputs and
// safe for concurrent use.
type Engine struct {
	cfg            Config
	watchlist      map[string]struct{}
	analystTargets []string
	scorer         Scorer
	logger         *zerolog.Logger
}

// New creates a ranking engine. scorer may be nil.
func New(cfg Config, scorer Scorer, logger *zerolog.Logger) *Engine {
	watchlist := make(map[string]struct{}, len(cfg.WatchlistTickers))
	for _, t := range cfg.WatchlistTickers {
		watchlist[strings.ToUpper(t)] = struct{}{}
	}

	analystTargets := make([]string, 0, len(cfg.AnalystTargetKeywords))
	for _, kw := range cfg.AnalystTargetKeywords {
		analystTargets = append(analystTargets, strings.ToLower(kw))
	}

	return &Engine{
		cfg:            cfg,
		watchlist:      watchlist,
		analystTargets: analystTargets,
		scorer:         scorer,
		logger:         logger,
	}
}

// scoredCard pairs a card with its computed ranking state for the
// duration of one RankCards call. Index identifies the card within the
// input slice; structurally identical cards from different clusters stay
// distinguishable through it.
type scoredCard struct {
	index         int
	card          domain.FactCard
	score         float64
	region        string
	analystTarget bool
	watchlisted   bool
}

// RankCards scores the cards and builds the output buckets. Missing
// clusters, unresolved regions, and an absent scorer all degrade to
// documented defaults; the call never fails.
func (e *Engine) RankCards(cards []domain.FactCard, clusters []*domain.StoryCluster) domain.Buckets {
	if len(cards) == 0 {
		return domain.Buckets{
			ChinaNoteNeeded: true,
			Top5Regions:     emptyRegionCounts(),
		}
	}

	byID := make(map[string]*domain.StoryCluster, len(clusters))
	for _, c := range clusters {
		byID[c.ID] = c
	}

	scored := e.scoreCards(cards, byID)

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	byRegion := groupByRegion(scored)

	buckets := domain.Buckets{
		ChinaNewsAvailable: len(byRegion[regionChina]) > 0,
	}

	for _, sc := range scored {
		if sc.watchlisted {
			buckets.Watchlist = append(buckets.Watchlist, sc.card)
		}
	}

	top, chinaSlotFilled := e.selectTopStories(scored, byRegion)

	used := make(map[int]struct{}, len(top))
	for _, sc := range top {
		used[sc.index] = struct{}{}
		buckets.TopStories = append(buckets.TopStories, sc.card)
	}

	for _, sc := range scored {
		if _, ok := used[sc.index]; ok {
			continue
		}

		if e.isMacro(sc.card) {
			buckets.MacroPolicy = append(buckets.MacroPolicy, sc.card)
		} else {
			buckets.CompanyMarkets = append(buckets.CompanyMarkets, sc.card)
		}
	}

	buckets.ChinaNoteNeeded = e.cfg.RequireChinaInTop5 && !chinaSlotFilled
	buckets.Top5Regions = regionCounts(top)

	if e.scorer != nil && e.cfg.UseSentimentBoost {
		buckets.Mood = e.scorer.Mood(cards)
	}

	if e.logger != nil {
		e.logger.Info().
			Int("cards", len(cards)).
			Int("watchlist", len(buckets.Watchlist)).
			Int("top_stories", len(buckets.TopStories)).
			Int("macro_policy", len(buckets.MacroPolicy)).
			Int("company_markets", len(buckets.CompanyMarkets)).
			Interface("top5_regions", buckets.Top5Regions).
			Msg("ranked fact cards")
	}

	return buckets
}

// scoreCards computes the per-card score:
//
//	confidence
//	  * (1 + 0.15 * supporting count of the originating cluster)
//	  * 1.10 when the resolved region is not US
//	  * 0.70 for analyst price-target stories when deprioritization is on
//	  * sentiment boost when a scorer is configured
func (e *Engine) scoreCards(cards []domain.FactCard, byID map[string]*domain.StoryCluster) []*scoredCard {
	scored := make([]*scoredCard, 0, len(cards))

	for i, card := range cards {
		region := resolveRegion(card, byID)
		score := card.Confidence

		if c, ok := byID[card.StoryID]; ok {
			score *= 1 + supportingBoostStep*float64(len(c.Supporting))
		}

		if region != regionUS {
			score *= nonUSBoost
		}

		analystTarget := e.isAnalystTarget(card)
		if e.cfg.DeprioritizeAnalystTargets && analystTarget {
			score *= analystTargetPenalty
		}

		if e.scorer != nil && e.cfg.UseSentimentBoost {
			score *= e.scorer.Boost(card, e.cfg.SentimentBoostMin, e.cfg.SentimentBoostMax)
		}

		scored = append(scored, &scoredCard{
			index:         i,
			card:          card,
			score:         score,
			region:        region,
			analystTarget: analystTarget,
			watchlisted:   e.isWatchlisted(card),
		})
	}

	return scored
}

// selectTopStories builds the capped top-stories list: reserved slots for
// EU, China, and a US macro story first, then a score-order fill that
// skips watchlist-tagged cards and duplicate entities.
func (e *Engine) selectTopStories(scored []*scoredCard, byRegion map[string][]*scoredCard) ([]*scoredCard, bool) {
	var top []*scoredCard

	usedEntities := make(map[string]struct{})
	usedCards := make(map[int]struct{})

	take := func(sc *scoredCard) {
		top = append(top, sc)
		usedEntities[normalizeEntity(sc.card.Entity)] = struct{}{}
		usedCards[sc.index] = struct{}{}
	}

	if e.cfg.RequireEUInTop5 {
		if sc := firstUnused(byRegion[regionEU], usedCards, usedEntities, nil); sc != nil {
			take(sc)
		}
	}

	chinaSlotFilled := false

	if e.cfg.RequireChinaInTop5 {
		if sc := firstUnused(byRegion[regionChina], usedCards, usedEntities, nil); sc != nil {
			take(sc)

			chinaSlotFilled = true
		}
	}

	if e.cfg.RequireUSInTop5 {
		if sc := firstUnused(byRegion[regionUS], usedCards, usedEntities, e.isMacro); sc != nil {
			take(sc)
		}
	}

	for _, sc := range scored {
		if len(top) >= topStoriesCap {
			break
		}

		if _, ok := usedCards[sc.index]; ok {
			continue
		}

		// Watchlist cards have their own section; reserved slots above are
		// the only path for them into the top stories.
		if sc.watchlisted {
			continue
		}

		if _, ok := usedEntities[normalizeEntity(sc.card.Entity)]; ok {
			continue
		}

		take(sc)
	}

	return top, chinaSlotFilled
}

func firstUnused(candidates []*scoredCard, usedCards map[int]struct{}, usedEntities map[string]struct{}, extra func(domain.FactCard) bool) *scoredCard {
	for _, sc := range candidates {
		if _, ok := usedCards[sc.index]; ok {
			continue
		}

		if extra != nil && !extra(sc.card) {
			continue
		}

		if _, ok := usedEntities[normalizeEntity(sc.card.Entity)]; ok {
			continue
		}

		return sc
	}

	return nil
}

// isMacro reports whether a card belongs to the macro/policy bucket:
// broad stories without tickers, macro-institution entities, or macro
// keyword matches in the card text.
func (e *Engine) isMacro(card domain.FactCard) bool {
	if len(card.Tickers) == 0 {
		return true
	}

	entity := strings.ToLower(card.Entity)
	for _, me := range macroEntities {
		if strings.Contains(entity, me) {
			return true
		}
	}

	text := strings.ToLower(card.Entity + " " + card.Trend + " " + card.WhyItMatters)
	for _, kw := range macroKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	return false
}

func (e *Engine) isAnalystTarget(card domain.FactCard) bool {
	text := strings.ToLower(card.Entity + " " + card.Trend + " " + card.WhyItMatters)

	for _, kw := range e.analystTargets {
		if strings.Contains(text, kw) {
			return true
		}
	}

	return false
}

func (e *Engine) isWatchlisted(card domain.FactCard) bool {
	for _, t := range card.Tickers {
		if _, ok := e.watchlist[strings.ToUpper(t)]; ok {
			return true
		}
	}

	return false
}

func normalizeEntity(entity string) string {
	return strings.ToLower(strings.TrimSpace(entity))
}

func groupByRegion(scored []*scoredCard) map[string][]*scoredCard {
	byRegion := make(map[string][]*scoredCard)

	for _, sc := range scored {
		switch sc.region {
		case regionUS, regionEU, regionChina, regionGlobal:
			byRegion[sc.region] = append(byRegion[sc.region], sc)
		default:
			byRegion[regionOther] = append(byRegion[regionOther], sc)
		}
	}

	return byRegion
}

func regionCounts(top []*scoredCard) map[string]int {
	counts := emptyRegionCounts()

	for _, sc := range top {
		switch sc.region {
		case regionUS:
			counts["us"]++
		case regionEU:
			counts["eu"]++
		case regionChina:
			counts["china"]++
		case regionGlobal, regionOther:
			counts["other"]++
		}
	}

	return counts
}

func emptyRegionCounts() map[string]int {
	return map[string]int{"us": 0, "eu": 0, "china": 0, "other": 0}
}
