// Package compose turns ranked fact card buckets into newsletter copy via
// an LLM call that returns the brief's sections as a JSON object.
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
	"github.com/smartinvest/markets-brief/internal/llm"
)

// BriefContent is the model-authored copy for one daily brief. Section
// bodies are HTML fragments dropped into the email template.
type BriefContent struct {
	NewsHeadline   string `json:"news_headline"`
	IntroParagraph string `json:"intro_paragraph"`
	Top5HTML       string `json:"top5_html"`
	MacroHTML      string `json:"macro_html"`
	WatchlistHTML  string `json:"watchlist_html"`
	SnapshotHTML   string `json:"snapshot_html"`
	Preheader      string `json:"preheader"`
}

// WeeklyContent is the copy for the weekly recap email.
type WeeklyContent struct {
	Headline   string `json:"headline"`
	Intro      string `json:"intro"`
	ThemesHTML string `json:"themes_html"`
	Preheader  string `json:"preheader"`
}

// Composer writes newsletter copy from ranked buckets.
type Composer struct {
	client    llm.Client
	brand     string
	maxTokens int
	logger    *zerolog.Logger
}

func New(client llm.Client, brand string, maxTokens int, logger *zerolog.Logger) *Composer {
	return &Composer{
		client:    client,
		brand:     brand,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

const dailySystemPrompt = `You are the editor of a daily markets newsletter for retail investors.
Write clear, energetic, jargon-free copy. Every claim must come from the
fact cards provided; never invent numbers or events.
Return a single JSON object with these string fields:
- news_headline: punchy subject-line headline for the day
- intro_paragraph: 2-3 sentence opening summarizing the day's mood
- top5_html: HTML fragment (<ol> with <li> per story) covering the top stories
- macro_html: HTML fragment covering macro and policy items
- watchlist_html: HTML fragment covering watchlist company items, or "" if none
- snapshot_html: HTML fragment with a one-line market snapshot table
- preheader: under-100-character preview text
Return ONLY the JSON object.`

// ComposeDaily writes the daily brief sections from ranked buckets.
func (c *Composer) ComposeDaily(ctx context.Context, buckets *domain.Buckets) (*BriefContent, error) {
	prompt := c.buildDailyPrompt(buckets)

	raw, err := c.client.ChatJSON(ctx, dailySystemPrompt, prompt, c.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("compose daily: %w", err)
	}

	var content BriefContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("%w: daily brief: %w", apperrors.ErrMalformedJSON, err)
	}

	if content.NewsHeadline == "" || content.Top5HTML == "" {
		return nil, fmt.Errorf("%w: daily brief missing required sections", apperrors.ErrEmptyResponse)
	}

	c.logger.Info().Str("headline", content.NewsHeadline).Msg("daily brief composed")

	return &content, nil
}

const weeklySystemPrompt = `You are the editor of a weekly markets recap newsletter.
Identify the 3-5 dominant themes of the week from the fact cards provided
and write a narrative recap. Every claim must come from the cards.
Return a single JSON object with these string fields:
- headline: subject-line headline for the week
- intro: 2-3 sentence opening
- themes_html: HTML fragment with an <h3> heading and paragraph per theme
- preheader: under-100-character preview text
Return ONLY the JSON object.`

// ComposeWeekly writes the weekly recap from the week's stored fact cards.
func (c *Composer) ComposeWeekly(ctx context.Context, cards []domain.FactCard, from, to time.Time) (*WeeklyContent, error) {
	if len(cards) == 0 {
		return nil, apperrors.ErrNoResults
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Fact cards collected between %s and %s:\n\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	writeCards(&b, cards)

	raw, err := c.client.ChatJSON(ctx, weeklySystemPrompt, b.String(), c.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("compose weekly: %w", err)
	}

	var content WeeklyContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("%w: weekly recap: %w", apperrors.ErrMalformedJSON, err)
	}

	if content.Headline == "" || content.ThemesHTML == "" {
		return nil, fmt.Errorf("%w: weekly recap missing required sections", apperrors.ErrEmptyResponse)
	}

	c.logger.Info().Str("headline", content.Headline).Int("cards", len(cards)).Msg("weekly recap composed")

	return &content, nil
}

func (c *Composer) buildDailyPrompt(buckets *domain.Buckets) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Newsletter brand: %s\n\n", c.brand)

	if buckets.Mood != nil {
		label := cases.Title(language.English).String(buckets.Mood.Label)
		fmt.Fprintf(&b, "Market mood: %s (%s). %s\n\n", label, buckets.Mood.Signal, buckets.Mood.Summary)
	}

	b.WriteString("TOP STORIES:\n")
	writeCards(&b, buckets.TopStories)

	if len(buckets.MacroPolicy) > 0 {
		b.WriteString("\nMACRO & POLICY:\n")
		writeCards(&b, buckets.MacroPolicy)
	}

	if len(buckets.CompanyMarkets) > 0 {
		b.WriteString("\nCOMPANIES & MARKETS:\n")
		writeCards(&b, buckets.CompanyMarkets)
	}

	if len(buckets.Watchlist) > 0 {
		b.WriteString("\nWATCHLIST:\n")
		writeCards(&b, buckets.Watchlist)
	}

	if buckets.ChinaNoteNeeded {
		b.WriteString("\nNote: no China coverage was available today. Mention that briefly in the intro.\n")
	}

	return b.String()
}

func writeCards(b *strings.Builder, cards []domain.FactCard) {
	for _, card := range cards {
		fmt.Fprintf(b, "- %s: %s", card.Entity, card.Trend)

		if card.DataPoint != "" {
			fmt.Fprintf(b, " (%s)", card.DataPoint)
		}

		if card.WhyItMatters != "" {
			fmt.Fprintf(b, " Why it matters: %s", card.WhyItMatters)
		}

		if len(card.Tickers) > 0 {
			fmt.Fprintf(b, " [%s]", strings.Join(card.Tickers, ", "))
		}

		if url := card.URL(); url != "" {
			fmt.Fprintf(b, " Source: %s", url)
		}

		b.WriteString("\n")
	}
}
