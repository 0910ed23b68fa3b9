// Package extract turns story clusters into structured fact cards via an
// LLM call constrained by a strict JSON schema, with local schema
// validation of every card the model returns.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
	"github.com/smartinvest/markets-brief/internal/llm"
)

const (
	maxAttempts = 2

	// invalidRatioLimit triggers a retry when more than half of the
	// returned cards fail validation; a response that broken usually
	// means the model lost the format entirely.
	invalidRatioLimit = 0.5
)

const extractSystemPrompt = `You are a financial analyst extracting structured facts from news stories.
For each story, extract exactly one fact card capturing the single most market-relevant claim.
Rules:
- story_id must be the id of the story the card came from
- entity is the company, institution, or market the claim is about
- trend is a short phrase describing the direction or change
- data_point carries the concrete figure or quote backing the claim, empty if none
- why_it_matters is one sentence on investor relevance
- confidence is your 0-1 estimate that the claim is accurate and material
- tickers lists affected stock tickers, empty if none
- sources and urls come from the story's items
Skip stories with no extractable market-relevant fact.`

// Extractor runs schema-constrained fact card extraction.
type Extractor struct {
	client      llm.Client
	maxTokens   int
	maxClusters int
	cardSchema  *jsonschema.Schema
	logger      *zerolog.Logger
}

func New(client llm.Client, maxTokens, maxClusters int, logger *zerolog.Logger) (*Extractor, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fact_cards.json", strings.NewReader(factCardsSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	cardSchema, err := compiler.Compile("fact_cards.json#/properties/cards/items")
	if err != nil {
		return nil, fmt.Errorf("compile card schema: %w", err)
	}

	return &Extractor{
		client:      client,
		maxTokens:   maxTokens,
		maxClusters: maxClusters,
		cardSchema:  cardSchema,
		logger:      logger,
	}, nil
}

// Extract produces validated fact cards for the given clusters. Clusters
// beyond the configured cap are dropped from the prompt in list order.
// Individual invalid cards are skipped; a response that fails to parse or
// loses more than half its cards to validation is retried once.
func (e *Extractor) Extract(ctx context.Context, clusters []*domain.StoryCluster) ([]domain.FactCard, error) {
	if len(clusters) == 0 {
		return nil, nil
	}

	if len(clusters) > e.maxClusters {
		e.logger.Info().
			Int("clusters", len(clusters)).
			Int("cap", e.maxClusters).
			Msg("capping clusters for extraction")

		clusters = clusters[:e.maxClusters]
	}

	prompt := buildPrompt(clusters)
	knownIDs := clusterIDSet(clusters)

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := e.client.ChatJSONSchema(ctx, "fact_cards", json.RawMessage(factCardsSchema), extractSystemPrompt, prompt, e.maxTokens)
		if err != nil {
			return nil, fmt.Errorf("extraction request: %w", err)
		}

		cards, invalid, err := e.parseCards(raw, knownIDs)
		if err != nil {
			lastErr = err

			e.logger.Warn().Err(err).Int("attempt", attempt).Msg("extraction response unparseable, retrying")

			continue
		}

		total := len(cards) + invalid
		if total > 0 && float64(invalid)/float64(total) > invalidRatioLimit {
			lastErr = fmt.Errorf("%w: %d of %d cards invalid", apperrors.ErrInvalidCard, invalid, total)

			e.logger.Warn().
				Int("invalid", invalid).
				Int("total", total).
				Int("attempt", attempt).
				Msg("too many invalid cards, retrying")

			continue
		}

		cardsExtracted.Add(float64(len(cards)))
		cardsRejected.Add(float64(invalid))

		e.logger.Info().
			Int("cards", len(cards)).
			Int("invalid", invalid).
			Int("clusters", len(clusters)).
			Msg("extraction complete")

		return cards, nil
	}

	return nil, fmt.Errorf("%w: %w", apperrors.ErrRetriesExhausted, lastErr)
}

// parseCards decodes the response envelope and validates each card
// individually, returning the valid cards and the invalid count.
func (e *Extractor) parseCards(raw string, knownIDs map[string]struct{}) ([]domain.FactCard, int, error) {
	var envelope struct {
		Cards []json.RawMessage `json:"cards"`
	}

	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", apperrors.ErrMalformedJSON, err)
	}

	var (
		cards   []domain.FactCard
		invalid int
	)

	for _, rawCard := range envelope.Cards {
		card, err := e.validateCard(rawCard, knownIDs)
		if err != nil {
			invalid++

			e.logger.Debug().Err(err).Msg("dropping invalid fact card")

			continue
		}

		cards = append(cards, card)
	}

	return cards, invalid, nil
}

func (e *Extractor) validateCard(rawCard json.RawMessage, knownIDs map[string]struct{}) (domain.FactCard, error) {
	var value any
	if err := json.Unmarshal(rawCard, &value); err != nil {
		return domain.FactCard{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCard, err)
	}

	if err := e.cardSchema.Validate(value); err != nil {
		return domain.FactCard{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCard, err)
	}

	var card domain.FactCard
	if err := json.Unmarshal(rawCard, &card); err != nil {
		return domain.FactCard{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCard, err)
	}

	if _, ok := knownIDs[card.StoryID]; !ok {
		return domain.FactCard{}, fmt.Errorf("%w: unknown story_id %q", apperrors.ErrInvalidCard, card.StoryID)
	}

	return card, nil
}

func buildPrompt(clusters []*domain.StoryCluster) string {
	var b strings.Builder

	b.WriteString("Extract fact cards from these stories:\n\n")

	for _, c := range clusters {
		fmt.Fprintf(&b, "Story id: %s\n", c.ID)
		fmt.Fprintf(&b, "Headline: %s (%s)\n", c.Primary.Title, c.Primary.Source)

		if c.Primary.Snippet != "" {
			fmt.Fprintf(&b, "Summary: %s\n", c.Primary.Snippet)
		}

		fmt.Fprintf(&b, "URL: %s\n", c.Primary.URL)

		for _, s := range c.Supporting {
			fmt.Fprintf(&b, "Also reported: %s (%s) %s\n", s.Title, s.Source, s.URL)
		}

		b.WriteString("\n")
	}

	return b.String()
}

func clusterIDSet(clusters []*domain.StoryCluster) map[string]struct{} {
	ids := make(map[string]struct{}, len(clusters))
	for _, c := range clusters {
		ids[c.ID] = struct{}{}
	}

	return ids
}
