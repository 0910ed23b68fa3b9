package retrieval

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
	"github.com/smartinvest/markets-brief/internal/process/dedup"
)

// wireItem is the JSON shape the retrieval model is instructed to emit.
type wireItem struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Snippet     string `json:"snippet"`
	Region      string `json:"region"`
}

// parseItems extracts a JSON array from a model response that may carry
// markdown fences or preamble around the payload.
func parseItems(raw string) ([]wireItem, error) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")

	if start != -1 && end != -1 && end > start {
		clean = clean[start : end+1]
	}

	var items []wireItem
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMalformedJSON, err)
	}

	return items, nil
}

// normalizeItem validates a wire item and converts it into the domain
// shape: URL scheme check, snippet word cap, published-at parsing, and
// canonical URL derivation.
func normalizeItem(item wireItem, snippetWords int) (domain.NewsItem, error) {
	if !strings.HasPrefix(item.URL, "http://") && !strings.HasPrefix(item.URL, "https://") {
		return domain.NewsItem{}, fmt.Errorf("%w: missing or non-http url", apperrors.ErrInvalidItem)
	}

	if item.Title == "" {
		return domain.NewsItem{}, fmt.Errorf("%w: empty title", apperrors.ErrInvalidItem)
	}

	snippet := truncateWords(item.Snippet, snippetWords)

	var published time.Time
	if item.PublishedAt != "" {
		if t, err := dateparse.ParseAny(item.PublishedAt); err == nil {
			published = t
		}
	}

	region := strings.ToLower(strings.TrimSpace(item.Region))
	if region == "" {
		region = domain.RegionOther
	}

	return domain.NewsItem{
		Title:        item.Title,
		Source:       item.Source,
		URL:          item.URL,
		CanonicalURL: dedup.CanonicalURL(item.URL),
		PublishedAt:  published,
		Snippet:      snippet,
		Region:       region,
	}, nil
}

func truncateWords(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}

	return strings.Join(words[:limit], " ") + "..."
}
