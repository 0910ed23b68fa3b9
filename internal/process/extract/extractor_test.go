package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
	"github.com/smartinvest/markets-brief/internal/llm"
)

// schemaMockClient returns canned ChatJSONSchema responses in call order
// and records the prompts it saw.
type schemaMockClient struct {
	llm.Client
	responses []string
	prompts   []string
}

func (m *schemaMockClient) ChatJSONSchema(_ context.Context, _ string, _ json.RawMessage, _, user string, _ int) (string, error) {
	m.prompts = append(m.prompts, user)

	if len(m.responses) == 0 {
		return "", errors.New("no scripted response")
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	return resp, nil
}

func testClusters(n int) []*domain.StoryCluster {
	clusters := make([]*domain.StoryCluster, 0, n)

	for i := 0; i < n; i++ {
		clusters = append(clusters, &domain.StoryCluster{
			ID: fmt.Sprintf("story-%d", i),
			Primary: domain.NewsItem{
				Title:   fmt.Sprintf("Headline %d", i),
				Source:  "Reuters",
				URL:     fmt.Sprintf("https://example.com/%d", i),
				Snippet: "snippet",
			},
		})
	}

	return clusters
}

func newTestExtractor(t *testing.T, client llm.Client, maxClusters int) *Extractor {
	t.Helper()

	logger := zerolog.Nop()

	e, err := New(client, 3000, maxClusters, &logger)
	require.NoError(t, err)

	return e
}

func validCard(storyID, entity string) string {
	return fmt.Sprintf(`{"story_id":%q,"entity":%q,"trend":"rose","data_point":"","why_it_matters":"","confidence":0.8,"tickers":[],"sources":["Reuters"],"urls":["https://example.com/a"]}`, storyID, entity)
}

func TestExtractValidResponse(t *testing.T) {
	client := &schemaMockClient{responses: []string{
		fmt.Sprintf(`{"cards":[%s,%s]}`, validCard("story-0", "Apple"), validCard("story-1", "Nvidia")),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(2))

	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Apple", cards[0].Entity)
	assert.Equal(t, "story-1", cards[1].StoryID)
}

func TestExtractSkipsInvalidCards(t *testing.T) {
	client := &schemaMockClient{responses: []string{
		fmt.Sprintf(`{"cards":[%s,%s,%s,
			{"story_id":"story-1","entity":"","trend":"x","data_point":"","why_it_matters":"","confidence":0.5,"tickers":[],"sources":[],"urls":[]}]}`,
			validCard("story-0", "Apple"), validCard("story-1", "Nvidia"), validCard("story-2", "Tesla")),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(3))

	require.NoError(t, err)
	assert.Len(t, cards, 3)
	assert.Len(t, client.prompts, 1)
}

func TestExtractRejectsCardsWithoutProvenance(t *testing.T) {
	noSources := `{"story_id":"story-0","entity":"Apple","trend":"rose","data_point":"","why_it_matters":"","confidence":0.5,"tickers":[],"sources":[],"urls":[]}`
	longWhy := fmt.Sprintf(`{"story_id":"story-1","entity":"Nvidia","trend":"rose","data_point":"","why_it_matters":%q,"confidence":0.5,"tickers":[],"sources":["Reuters"],"urls":["https://example.com/n"]}`,
		strings.Repeat("x", 201))

	client := &schemaMockClient{responses: []string{
		fmt.Sprintf(`{"cards":[%s,%s,%s,%s,%s]}`,
			validCard("story-0", "Apple"),
			validCard("story-1", "Nvidia"),
			validCard("story-2", "Tesla"),
			noSources, longWhy),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(3))

	require.NoError(t, err)
	assert.Len(t, cards, 3)
	assert.Len(t, client.prompts, 1)
}

func TestExtractRejectsUnknownStoryID(t *testing.T) {
	client := &schemaMockClient{responses: []string{
		fmt.Sprintf(`{"cards":[%s,%s,%s]}`,
			validCard("story-0", "Apple"),
			validCard("story-1", "Nvidia"),
			validCard("invented", "Ghost")),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(2))

	require.NoError(t, err)
	require.Len(t, cards, 2)

	for _, card := range cards {
		assert.NotEqual(t, "Ghost", card.Entity)
	}
}

func TestExtractRejectsOutOfRangeConfidence(t *testing.T) {
	client := &schemaMockClient{responses: []string{
		fmt.Sprintf(`{"cards":[%s,%s,
			{"story_id":"story-0","entity":"Apple","trend":"x","data_point":"","why_it_matters":"","confidence":1.4,"tickers":[],"sources":[],"urls":[]}]}`,
			validCard("story-0", "Apple"), validCard("story-1", "Nvidia")),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(2))

	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestExtractRetriesOnMalformedJSON(t *testing.T) {
	client := &schemaMockClient{responses: []string{
		"not json at all",
		fmt.Sprintf(`{"cards":[%s]}`, validCard("story-0", "Apple")),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(1))

	require.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Len(t, client.prompts, 2)
}

func TestExtractRetriesWhenMostCardsInvalid(t *testing.T) {
	mostlyInvalid := fmt.Sprintf(`{"cards":[%s,
		{"story_id":"story-0","entity":"","trend":"","data_point":"","why_it_matters":"","confidence":0.5,"tickers":[],"sources":[],"urls":[]},
		{"story_id":"missing","entity":"X","trend":"y","data_point":"","why_it_matters":"","confidence":0.5,"tickers":[],"sources":[],"urls":[]}]}`,
		validCard("story-0", "Apple"))

	client := &schemaMockClient{responses: []string{
		mostlyInvalid,
		fmt.Sprintf(`{"cards":[%s]}`, validCard("story-0", "Apple")),
	}}

	e := newTestExtractor(t, client, 14)

	cards, err := e.Extract(context.Background(), testClusters(1))

	require.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Len(t, client.prompts, 2)
}

func TestExtractExhaustsRetries(t *testing.T) {
	client := &schemaMockClient{responses: []string{"garbage", "more garbage"}}

	e := newTestExtractor(t, client, 14)

	_, err := e.Extract(context.Background(), testClusters(1))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrRetriesExhausted))
}

func TestExtractCapsClusters(t *testing.T) {
	client := &schemaMockClient{responses: []string{
		fmt.Sprintf(`{"cards":[%s]}`, validCard("story-0", "Apple")),
	}}

	e := newTestExtractor(t, client, 3)

	_, err := e.Extract(context.Background(), testClusters(10))

	require.NoError(t, err)
	require.Len(t, client.prompts, 1)

	// Only the first three stories reach the prompt.
	assert.True(t, strings.Contains(client.prompts[0], "story-2"))
	assert.False(t, strings.Contains(client.prompts[0], "story-3"))
}

func TestExtractEmptyClusters(t *testing.T) {
	e := newTestExtractor(t, &schemaMockClient{}, 14)

	cards, err := e.Extract(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, cards)
}
