package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	"github.com/smartinvest/markets-brief/internal/process/dedup"
)

// FeedSource pulls supplementary news items from configured RSS/Atom
// feeds. Feed items fill gaps on days when the search API has thin
// coverage; they go through the same normalization and dedup as search
// results before clustering.
type FeedSource struct {
	urls           []string
	region         string
	snippetWords   int
	titleThreshold float64
	parser         *gofeed.Parser
	logger         *zerolog.Logger
}

// NewFeedSource returns nil when no feed URLs are configured.
func NewFeedSource(urls []string, region string, snippetWords int, titleThreshold float64, logger *zerolog.Logger) *FeedSource {
	if len(urls) == 0 {
		return nil
	}

	return &FeedSource{
		urls:           urls,
		region:         strings.ToLower(region),
		snippetWords:   snippetWords,
		titleThreshold: titleThreshold,
		parser:         gofeed.NewParser(),
		logger:         logger,
	}
}

// Fetch reads all configured feeds and returns the deduplicated items.
// Feed failures are logged and skipped; a dead feed never fails the run.
func (f *FeedSource) Fetch(ctx context.Context) []domain.NewsItem {
	var items []domain.NewsItem

	for _, url := range f.urls {
		feed, err := f.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			f.logger.Warn().Err(err).Str("feed", url).Msg("feed fetch failed")

			continue
		}

		for _, entry := range feed.Items {
			item, ok := f.toItem(feed, entry)
			if !ok {
				itemsDroppedTotal.WithLabelValues("invalid").Inc()

				continue
			}

			items = append(items, item)
		}
	}

	return dedup.Deduplicate(items, f.titleThreshold)
}

func (f *FeedSource) toItem(feed *gofeed.Feed, entry *gofeed.Item) (domain.NewsItem, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" || !strings.HasPrefix(entry.Link, "http") {
		return domain.NewsItem{}, false
	}

	published := time.Now().UTC()

	switch {
	case entry.PublishedParsed != nil:
		published = entry.PublishedParsed.UTC()
	case entry.Published != "":
		if parsed, err := dateparse.ParseAny(entry.Published); err == nil {
			published = parsed.UTC()
		}
	}

	snippet := entry.Description
	if snippet == "" {
		snippet = entry.Content
	}

	return domain.NewsItem{
		Title:        title,
		Source:       feed.Title,
		URL:          entry.Link,
		CanonicalURL: dedup.CanonicalURL(entry.Link),
		PublishedAt:  published,
		Snippet:      truncateWords(strip(snippet), f.snippetWords),
		Region:       f.region,
	}, true
}

// strip removes HTML tags from feed descriptions. Feed snippets only feed
// extraction prompts, so a crude tag strip is enough.
func strip(s string) string {
	var b strings.Builder

	inTag := false

	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
