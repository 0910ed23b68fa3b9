package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

// UpsertItems saves retrieved items, keyed by URL. A re-retrieved item
// keeps its row but refreshes the mutable fields.
func (db *DB) UpsertItems(ctx context.Context, items []domain.NewsItem) error {
	const query = `
		INSERT INTO items (title, source, url, canonical_url, published_at, snippet, region)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			canonical_url = EXCLUDED.canonical_url,
			published_at = EXCLUDED.published_at,
			snippet = EXCLUDED.snippet,
			region = EXCLUDED.region`

	for _, item := range items {
		var published *time.Time
		if !item.PublishedAt.IsZero() {
			published = &item.PublishedAt
		}

		_, err := db.Pool.Exec(ctx, query,
			item.Title, item.Source, item.URL, item.CanonicalURL,
			published, item.Snippet, item.Region)
		if err != nil {
			return fmt.Errorf("upsert item %s: %w", item.URL, err)
		}
	}

	return nil
}
