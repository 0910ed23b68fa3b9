package app

import (
	"context"
	"fmt"
	"time"

	"github.com/smartinvest/markets-brief/internal/observability"
	"github.com/smartinvest/markets-brief/internal/storage"
)

const weeklyLookback = 7 * 24 * time.Hour

// RunWeekly composes and sends the weekly recap from the fact cards
// stored over the past seven days.
func (a *App) RunWeekly(ctx context.Context) error {
	started := time.Now()

	err := a.runWeekly(ctx)

	status := "ok"
	if err != nil {
		status = "error"
	}

	observability.RunsTotal.WithLabelValues(storage.ReportKindWeekly, status).Inc()
	observability.RunDuration.WithLabelValues(storage.ReportKindWeekly).Observe(time.Since(started).Seconds())

	return err
}

func (a *App) runWeekly(ctx context.Context) error {
	to := time.Now()
	from := to.Add(-weeklyLookback)

	cards, err := a.database.FactCardsBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load fact cards: %w", err)
	}

	a.logger.Info().Int("cards", len(cards)).Msg("weekly recap material loaded")

	content, err := a.composer().ComposeWeekly(ctx, cards, from, to)
	if err != nil {
		return fmt.Errorf("composition: %w", err)
	}

	subject := fmt.Sprintf("%s %s", a.cfg.WeeklySubjectPrefix, content.Headline)

	renderer, client, err := a.mailer()
	if err != nil {
		return fmt.Errorf("mailer init: %w", err)
	}

	html, err := renderer.RenderWeekly(content, subject, to)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	meta := map[string]any{
		"cards": len(cards),
		"from":  from.Format(time.RFC3339),
		"to":    to.Format(time.RFC3339),
	}

	reportID, err := a.database.InsertReport(ctx, storage.ReportKindWeekly, subject, html, meta)
	if err != nil {
		a.logger.Warn().Err(err).Msg("report persistence failed, continuing")
	}

	if err := client.Send(ctx, a.cfg.EmailTo, subject, html); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	observability.EmailsSent.WithLabelValues(storage.ReportKindWeekly).Inc()

	if reportID != "" {
		if err := a.database.MarkReportSent(ctx, reportID, time.Now()); err != nil {
			a.logger.Warn().Err(err).Msg("report sent-stamp failed")
		}
	}

	a.logger.Info().Str("subject", subject).Msg("weekly recap sent")

	return nil
}
