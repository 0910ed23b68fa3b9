package app

import (
	"context"
	"fmt"
	"time"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
	"github.com/smartinvest/markets-brief/internal/observability"
	"github.com/smartinvest/markets-brief/internal/storage"
)

// RunDaily executes one daily brief: retrieval, extraction, ranking,
// composition, persistence, and delivery.
func (a *App) RunDaily(ctx context.Context) error {
	started := time.Now()

	err := a.runDaily(ctx)

	status := "ok"
	if err != nil {
		status = "error"
	}

	observability.RunsTotal.WithLabelValues(storage.ReportKindDaily, status).Inc()
	observability.RunDuration.WithLabelValues(storage.ReportKindDaily).Observe(time.Since(started).Seconds())

	return err
}

func (a *App) runDaily(ctx context.Context) error {
	result, err := a.planner().Fetch(ctx)
	if err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}

	if !result.IsSufficient {
		return fmt.Errorf("%w: %d of %d queries succeeded, need %d",
			apperrors.ErrInsufficientRetrieval,
			result.SuccessfulQueries,
			result.SuccessfulQueries+result.FailedQueries,
			a.cfg.MinSuccessfulQueries)
	}

	if err := a.persistItems(ctx, result.Clusters); err != nil {
		a.logger.Warn().Err(err).Msg("item persistence failed, continuing")
	}

	extractor, err := a.extractor()
	if err != nil {
		return fmt.Errorf("extractor init: %w", err)
	}

	cards, err := extractor.Extract(ctx, result.Clusters)
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if len(cards) == 0 {
		return apperrors.ErrNoResults
	}

	if err := a.database.UpsertFactCards(ctx, cards); err != nil {
		a.logger.Warn().Err(err).Msg("fact card persistence failed, continuing")
	}

	buckets := a.ranker().RankCards(cards, result.Clusters)

	observability.BucketSize.WithLabelValues("watchlist").Set(float64(len(buckets.Watchlist)))
	observability.BucketSize.WithLabelValues("top_stories").Set(float64(len(buckets.TopStories)))
	observability.BucketSize.WithLabelValues("macro_policy").Set(float64(len(buckets.MacroPolicy)))
	observability.BucketSize.WithLabelValues("company_markets").Set(float64(len(buckets.CompanyMarkets)))

	content, err := a.composer().ComposeDaily(ctx, &buckets)
	if err != nil {
		return fmt.Errorf("composition: %w", err)
	}

	subject := fmt.Sprintf("%s %s", a.cfg.SubjectPrefix, content.NewsHeadline)

	renderer, client, err := a.mailer()
	if err != nil {
		return fmt.Errorf("mailer init: %w", err)
	}

	html, err := renderer.RenderDaily(content, buckets.Mood, subject, time.Now())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	meta := map[string]any{
		"clusters":           len(result.Clusters),
		"cards":              len(cards),
		"successful_queries": result.SuccessfulQueries,
		"failed_queries":     result.FailedQueries,
		"top_stories":        len(buckets.TopStories),
		"watchlist":          len(buckets.Watchlist),
	}

	reportID, err := a.database.InsertReport(ctx, storage.ReportKindDaily, subject, html, meta)
	if err != nil {
		a.logger.Warn().Err(err).Msg("report persistence failed, continuing")
	}

	if err := client.Send(ctx, a.cfg.EmailTo, subject, html); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	observability.EmailsSent.WithLabelValues(storage.ReportKindDaily).Inc()

	if reportID != "" {
		if err := a.database.MarkReportSent(ctx, reportID, time.Now()); err != nil {
			a.logger.Warn().Err(err).Msg("report sent-stamp failed")
		}
	}

	if pruned, err := a.database.DeleteFactCardsBefore(ctx, time.Now().Add(-a.cfg.FactCardRetention)); err != nil {
		a.logger.Warn().Err(err).Msg("fact card pruning failed")
	} else if pruned > 0 {
		a.logger.Info().Int64("pruned", pruned).Msg("old fact cards pruned")
	}

	a.logger.Info().
		Str("subject", subject).
		Int("cards", len(cards)).
		Int("top_stories", len(buckets.TopStories)).
		Msg("daily brief sent")

	return nil
}

func (a *App) persistItems(ctx context.Context, clusters []*domain.StoryCluster) error {
	var items []domain.NewsItem

	for _, c := range clusters {
		items = append(items, c.Primary)
		items = append(items, c.Supporting...)
	}

	return a.database.UpsertItems(ctx, items)
}
