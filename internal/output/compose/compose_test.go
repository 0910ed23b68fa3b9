package compose

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
	"github.com/smartinvest/markets-brief/internal/llm"
)

type jsonMockClient struct {
	llm.Client
	response string
	err      error
	prompt   string
}

func (m *jsonMockClient) ChatJSON(_ context.Context, _, user string, _ int) (string, error) {
	m.prompt = user

	return m.response, m.err
}

func newTestComposer(client llm.Client) *Composer {
	logger := zerolog.Nop()

	return New(client, "Smart Invest", 2500, &logger)
}

func sampleBuckets() *domain.Buckets {
	return &domain.Buckets{
		TopStories: []domain.FactCard{
			{Entity: "Nvidia", Trend: "beat earnings", DataPoint: "revenue +94% yoy", Tickers: []string{"NVDA"}, URLs: []string{"https://example.com/nvda"}},
			{Entity: "Federal Reserve", Trend: "held rates", WhyItMatters: "Cut timing drives everything"},
		},
		MacroPolicy: []domain.FactCard{
			{Entity: "Treasury", Trend: "yields fell"},
		},
		Watchlist: []domain.FactCard{
			{Entity: "Apple", Trend: "guidance raised", Tickers: []string{"AAPL"}},
		},
		Mood: &domain.MoodSummary{Label: "bullish", Signal: "Risk-On", Summary: "Headlines skew bullish"},
	}
}

func TestComposeDaily(t *testing.T) {
	body, err := json.Marshal(BriefContent{
		NewsHeadline:   "Nvidia powers a risk-on session",
		IntroParagraph: "Markets rallied.",
		Top5HTML:       "<ol><li>Nvidia</li></ol>",
		Preheader:      "Nvidia beats, Fed holds",
	})
	require.NoError(t, err)

	client := &jsonMockClient{response: string(body)}
	c := newTestComposer(client)

	content, err := c.ComposeDaily(context.Background(), sampleBuckets())

	require.NoError(t, err)
	assert.Equal(t, "Nvidia powers a risk-on session", content.NewsHeadline)

	// The prompt carries the card facts and the mood.
	assert.Contains(t, client.prompt, "Nvidia")
	assert.Contains(t, client.prompt, "revenue +94% yoy")
	assert.Contains(t, client.prompt, "Market mood: Bullish (Risk-On)")
	assert.Contains(t, client.prompt, "WATCHLIST")
}

func TestComposeDailyChinaNote(t *testing.T) {
	buckets := sampleBuckets()
	buckets.ChinaNoteNeeded = true

	body, _ := json.Marshal(BriefContent{NewsHeadline: "h", Top5HTML: "<ol></ol>"})
	client := &jsonMockClient{response: string(body)}

	_, err := newTestComposer(client).ComposeDaily(context.Background(), buckets)

	require.NoError(t, err)
	assert.Contains(t, client.prompt, "no China coverage")
}

func TestComposeDailyMissingSections(t *testing.T) {
	client := &jsonMockClient{response: `{"intro_paragraph":"only this"}`}

	_, err := newTestComposer(client).ComposeDaily(context.Background(), sampleBuckets())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEmptyResponse))
}

func TestComposeDailyMalformedResponse(t *testing.T) {
	client := &jsonMockClient{response: "not json"}

	_, err := newTestComposer(client).ComposeDaily(context.Background(), sampleBuckets())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedJSON))
}

func TestComposeWeekly(t *testing.T) {
	body, err := json.Marshal(WeeklyContent{
		Headline:   "A week ruled by rate bets",
		Intro:      "Five sessions, one theme.",
		ThemesHTML: "<h3>Rates</h3><p>...</p>",
		Preheader:  "The week in markets",
	})
	require.NoError(t, err)

	client := &jsonMockClient{response: string(body)}
	c := newTestComposer(client)

	to := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -7)

	cards := []domain.FactCard{
		{Entity: "Federal Reserve", Trend: "held rates"},
		{Entity: "Nvidia", Trend: "beat earnings"},
	}

	content, err := c.ComposeWeekly(context.Background(), cards, from, to)

	require.NoError(t, err)
	assert.Equal(t, "A week ruled by rate bets", content.Headline)
	assert.Contains(t, client.prompt, "2026-08-21")
	assert.Contains(t, client.prompt, "Federal Reserve")
}

func TestComposeWeeklyNoCards(t *testing.T) {
	c := newTestComposer(&jsonMockClient{})

	_, err := c.ComposeWeekly(context.Background(), nil, time.Now().AddDate(0, 0, -7), time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoResults))
}

func TestWriteCardsFormatting(t *testing.T) {
	var b strings.Builder

	writeCards(&b, []domain.FactCard{{
		Entity:       "Nvidia",
		Trend:        "beat earnings",
		DataPoint:    "revenue +94% yoy",
		WhyItMatters: "AI demand is holding up",
		Tickers:      []string{"NVDA"},
		URLs:         []string{"https://example.com/nvda"},
	}})

	line := b.String()
	assert.Contains(t, line, "Nvidia: beat earnings")
	assert.Contains(t, line, "(revenue +94% yoy)")
	assert.Contains(t, line, "[NVDA]")
	assert.Contains(t, line, "Source: https://example.com/nvda")
}
