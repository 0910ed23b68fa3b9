package storage

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"fmt"
	"time"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

// cardHashID derives the natural key for a fact card. The same claim
// extracted again on a later run lands on the same row.
func cardHashID(card domain.FactCard) string {
	sum := md5.Sum([]byte(card.Entity + "|" + card.Trend + "|" + card.DataPoint)) //nolint:gosec

	return hex.EncodeToString(sum[:])
}

// UpsertFactCards saves extracted cards keyed by content hash.
func (db *DB) UpsertFactCards(ctx context.Context, cards []domain.FactCard) error {
	const query = `
		INSERT INTO fact_cards (hash_id, story_id, entity, trend, data_point, why_it_matters, confidence, tickers, sources, urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (hash_id) DO UPDATE SET
			story_id = EXCLUDED.story_id,
			why_it_matters = EXCLUDED.why_it_matters,
			confidence = EXCLUDED.confidence,
			tickers = EXCLUDED.tickers,
			sources = EXCLUDED.sources,
			urls = EXCLUDED.urls`

	for _, card := range cards {
		_, err := db.Pool.Exec(ctx, query,
			cardHashID(card), card.StoryID, card.Entity, card.Trend,
			card.DataPoint, card.WhyItMatters, card.Confidence,
			card.Tickers, card.Sources, card.URLs)
		if err != nil {
			return fmt.Errorf("upsert fact card %s: %w", card.Entity, err)
		}
	}

	return nil
}

// FactCardsBetween returns cards created in [from, to), newest first.
// The weekly recap reads its material through this.
func (db *DB) FactCardsBetween(ctx context.Context, from, to time.Time) ([]domain.FactCard, error) {
	const query = `
		SELECT story_id, entity, trend, data_point, why_it_matters, confidence, tickers, sources, urls
		FROM fact_cards
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`

	rows, err := db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query fact cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.FactCard

	for rows.Next() {
		var card domain.FactCard

		err := rows.Scan(&card.StoryID, &card.Entity, &card.Trend, &card.DataPoint,
			&card.WhyItMatters, &card.Confidence, &card.Tickers, &card.Sources, &card.URLs)
		if err != nil {
			return nil, fmt.Errorf("scan fact card: %w", err)
		}

		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// DeleteFactCardsBefore prunes cards older than the retention cutoff and
// returns the number removed.
func (db *DB) DeleteFactCardsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM fact_cards WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete fact cards: %w", err)
	}

	return tag.RowsAffected(), nil
}
