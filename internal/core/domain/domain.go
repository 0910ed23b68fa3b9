package domain

import "time"

// Region tags carried by retrieved news items. Items are tagged at
// retrieval time based on the query that produced them.
const (
	RegionUS        = "us"
	RegionEU        = "eu"
	RegionChina     = "china"
	RegionGlobal    = "global"
	RegionWatchlist = "watchlist"
	RegionOther     = "other"
)

// NewsItem is a single normalized news item returned by retrieval.
type NewsItem struct {
	Title        string
	Source       string
	URL          string
	CanonicalURL string
	PublishedAt  time.Time
	Snippet      string
	Region       string
}

// StoryCluster groups items judged to cover the same real-world event.
// Primary is the member with the longest snippet; Supporting holds the
// rest up to the configured cap.
type StoryCluster struct {
	ID         string
	Primary    NewsItem
	Supporting []NewsItem
}

// Size returns the total member count including the primary item.
func (c *StoryCluster) Size() int {
	return 1 + len(c.Supporting)
}

// FactCard is a structured, validated claim extracted from a story
// cluster. It is the unit of ranking.
type FactCard struct {
	StoryID      string   `json:"story_id"`
	Entity       string   `json:"entity"`
	Trend        string   `json:"trend"`
	DataPoint    string   `json:"data_point"`
	WhyItMatters string   `json:"why_it_matters"`
	Confidence   float64  `json:"confidence"`
	Tickers      []string `json:"tickers"`
	Sources      []string `json:"sources"`
	URLs         []string `json:"urls"`
}

// URL returns the primary source URL, or "" when the card has none.
func (c *FactCard) URL() string {
	if len(c.URLs) == 0 {
		return ""
	}

	return c.URLs[0]
}

// MoodSummary is the aggregate market sentiment over a set of fact cards.
type MoodSummary struct {
	OverallScore float64 `json:"overall_score"`
	Label        string  `json:"label"`
	Signal       string  `json:"signal"`
	BullishCount int     `json:"bullish_count"`
	BearishCount int     `json:"bearish_count"`
	NeutralCount int     `json:"neutral_count"`
	Summary      string  `json:"summary"`
}

// Buckets is the output of one ranking call: ordered card lists per
// section plus coverage metadata consumed by composition.
type Buckets struct {
	Watchlist      []FactCard
	TopStories     []FactCard
	MacroPolicy    []FactCard
	CompanyMarkets []FactCard

	Mood               *MoodSummary
	ChinaNewsAvailable bool
	ChinaNoteNeeded    bool
	Top5Regions        map[string]int
}
