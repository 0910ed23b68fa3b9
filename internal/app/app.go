// Package app wires the pipeline together and exposes the operational
// modes:
//
//   - Daily mode: retrieve, cluster, extract, rank, compose, and send the
//     daily markets brief
//   - Weekly mode: compose and send the weekly recap from stored fact
//     cards
//
// Each mode runs once and exits; scheduling lives outside the binary.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smartinvest/markets-brief/internal/config"
	"github.com/smartinvest/markets-brief/internal/ingest/retrieval"
	"github.com/smartinvest/markets-brief/internal/llm"
	"github.com/smartinvest/markets-brief/internal/observability"
	"github.com/smartinvest/markets-brief/internal/output/compose"
	"github.com/smartinvest/markets-brief/internal/output/mailer"
	"github.com/smartinvest/markets-brief/internal/process/extract"
	"github.com/smartinvest/markets-brief/internal/rank"
	"github.com/smartinvest/markets-brief/internal/sentiment"
	"github.com/smartinvest/markets-brief/internal/storage"
)

// App holds the application dependencies and provides methods to run the
// operational modes.
type App struct {
	cfg      *config.Config
	database *storage.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *storage.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// planner builds the retrieval planner against the Perplexity endpoint.
func (a *App) planner() *retrieval.Planner {
	client := llm.NewOpenAI(llm.Options{
		APIKey:  a.cfg.PerplexityAPIKey,
		BaseURL: a.cfg.PerplexityBaseURL,
		Model:   a.cfg.RetrievalModel,
		RPS:     a.cfg.RateLimitRPS,
		Timeout: a.cfg.LLMTimeout,
	}, a.logger)

	feeds := retrieval.NewFeedSource(
		a.cfg.FeedURLs, a.cfg.FeedRegion,
		a.cfg.SnippetWords, a.cfg.TitleThreshold, a.logger)

	return retrieval.NewPlanner(a.cfg, client, feeds, a.logger)
}

// extractor builds the fact card extractor against OpenAI.
func (a *App) extractor() (*extract.Extractor, error) {
	client := llm.NewOpenAI(llm.Options{
		APIKey:  a.cfg.OpenAIAPIKey,
		Model:   a.cfg.ExtractModel,
		RPS:     a.cfg.RateLimitRPS,
		Timeout: a.cfg.LLMTimeout,
	}, a.logger)

	return extract.New(client, a.cfg.ExtractionMaxTokens, a.cfg.MaxClusters, a.logger)
}

// ranker builds the ranking engine with the lexicon sentiment scorer.
func (a *App) ranker() *rank.Engine {
	cfg := rank.Config{
		WatchlistTickers:           a.cfg.WatchlistTickers,
		UseSentimentBoost:          a.cfg.UseSentimentBoost,
		SentimentBoostMin:          a.cfg.SentimentBoostMin,
		SentimentBoostMax:          a.cfg.SentimentBoostMax,
		RequireUSInTop5:            a.cfg.RequireUSInTop5,
		RequireEUInTop5:            a.cfg.RequireEUInTop5,
		RequireChinaInTop5:         a.cfg.RequireChinaInTop5,
		DeprioritizeAnalystTargets: a.cfg.DeprioritizeAnalystTargets,
		AnalystTargetKeywords:      a.cfg.AnalystTargetKeywords,
	}

	return rank.New(cfg, sentiment.New(), a.logger)
}

// composer builds the newsletter copywriter against OpenAI.
func (a *App) composer() *compose.Composer {
	client := llm.NewOpenAI(llm.Options{
		APIKey:  a.cfg.OpenAIAPIKey,
		Model:   a.cfg.WriteModel,
		RPS:     a.cfg.RateLimitRPS,
		Timeout: a.cfg.LLMTimeout,
	}, a.logger)

	return compose.New(client, a.cfg.BrandName, a.cfg.CompositionMaxTokens, a.logger)
}

func (a *App) mailer() (*mailer.Renderer, *mailer.Client, error) {
	renderer, err := mailer.NewRenderer(a.cfg.BrandName)
	if err != nil {
		return nil, nil, err
	}

	return renderer, mailer.NewClient(a.cfg.SendgridAPIKey, a.cfg.EmailFrom, a.logger), nil
}
