package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	BrandName   string `env:"BRAND_NAME" envDefault:"Smart Invest"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// LLM endpoints
	OpenAIAPIKey         string        `env:"OPENAI_API_KEY,required"`
	PerplexityAPIKey     string        `env:"PERPLEXITY_API_KEY,required"`
	PerplexityBaseURL    string        `env:"PERPLEXITY_BASE_URL" envDefault:"https://api.perplexity.ai"`
	RetrievalModel       string        `env:"RETRIEVAL_MODEL" envDefault:"sonar"`
	ExtractModel         string        `env:"EXTRACT_MODEL" envDefault:"gpt-4o"`
	WriteModel           string        `env:"WRITE_MODEL" envDefault:"gpt-4o"`
	ExtractionMaxTokens  int           `env:"EXTRACTION_MAX_TOKENS" envDefault:"3000"`
	CompositionMaxTokens int           `env:"COMPOSITION_MAX_TOKENS" envDefault:"2500"`
	RateLimitRPS         int           `env:"RATE_LIMIT_RPS" envDefault:"1"`
	LLMTimeout           time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Retrieval plan
	SnippetWords               int      `env:"SNIPPET_WORDS" envDefault:"80"`
	MaxCandidates              int      `env:"MAX_CANDIDATES" envDefault:"50"`
	MaxCandidatesPerQuery      int      `env:"MAX_CANDIDATES_PER_QUERY" envDefault:"8"`
	MaxClusters                int      `env:"MAX_CLUSTERS" envDefault:"14"`
	MinSuccessfulQueries       int      `env:"MIN_SUCCESSFUL_QUERIES" envDefault:"3"`
	MinWatchlistTickersCovered int      `env:"MIN_WATCHLIST_TICKERS_COVERED" envDefault:"5"`
	WatchlistTickers           []string `env:"WATCHLIST_TICKERS" envSeparator:","`
	AllowedDomains             []string `env:"ALLOWED_DOMAINS" envSeparator:","`
	FeedURLs                   []string `env:"FEED_URLS" envSeparator:","`
	FeedRegion                 string   `env:"FEED_REGION" envDefault:"global"`

	// Clustering
	TitleThreshold   float64 `env:"TITLE_THRESHOLD" envDefault:"0.85"`
	JaccardThreshold float64 `env:"JACCARD_THRESHOLD" envDefault:"0.45"`
	MaxSupporting    int     `env:"MAX_SUPPORTING" envDefault:"2"`

	// Ranking
	UseSentimentBoost          bool     `env:"USE_SENTIMENT_BOOST" envDefault:"true"`
	SentimentBoostMin          float64  `env:"SENTIMENT_BOOST_MIN" envDefault:"0.95"`
	SentimentBoostMax          float64  `env:"SENTIMENT_BOOST_MAX" envDefault:"1.15"`
	RequireUSInTop5            bool     `env:"REQUIRE_US_IN_TOP5" envDefault:"true"`
	RequireEUInTop5            bool     `env:"REQUIRE_EU_IN_TOP5" envDefault:"true"`
	RequireChinaInTop5         bool     `env:"REQUIRE_CHINA_IN_TOP5" envDefault:"true"`
	DeprioritizeAnalystTargets bool     `env:"DEPRIORITIZE_ANALYST_TARGETS" envDefault:"true"`
	AnalystTargetKeywords      []string `env:"ANALYST_TARGET_KEYWORDS" envSeparator:"," envDefault:"price target,analyst rating,upgraded,downgraded,initiated coverage"`

	// Email
	SendgridAPIKey      string `env:"SENDGRID_API_KEY"`
	EmailFrom           string `env:"EMAIL_FROM"`
	EmailTo             string `env:"EMAIL_TO"`
	SubjectPrefix       string `env:"SUBJECT_PREFIX" envDefault:"[Markets Brief]"`
	WeeklySubjectPrefix string `env:"WEEKLY_SUBJECT_PREFIX" envDefault:"[Weekly Recap]"`

	// Retention
	FactCardRetention time.Duration `env:"FACT_CARD_RETENTION" envDefault:"720h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
