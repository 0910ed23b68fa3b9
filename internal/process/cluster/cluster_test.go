package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

func item(title, url, snippet string) domain.NewsItem {
	return domain.NewsItem{Title: title, URL: url, Snippet: snippet}
}

func TestClusterSameEventHeadlines(t *testing.T) {
	items := []domain.NewsItem{
		item("Fed raises interest rates by 25 basis points", "https://a.example.com/1", "one"),
		item("Fed raises interest rates by 25 basis points today", "https://b.example.com/2", "a longer snippet two"),
		item("Federal Reserve raises interest rates 25 basis points", "https://c.example.com/3", "three"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].Size())
	assert.Equal(t, "a longer snippet two", clusters[0].Primary.Snippet)
}

func TestClusterUnrelatedHeadlines(t *testing.T) {
	items := []domain.NewsItem{
		item("Oil prices slide on weak Chinese demand", "https://a.example.com/1", "one"),
		item("Apple unveils new iPhone lineup at launch event", "https://b.example.com/2", "two"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 2)
	assert.Equal(t, 1, clusters[0].Size())
	assert.Equal(t, 1, clusters[1].Size())
}

func TestClusterJoinsByCanonicalURL(t *testing.T) {
	items := []domain.NewsItem{
		item("Completely different headline about markets", "https://example.com/story?utm_source=x", "one"),
		item("Another unrelated angle on the situation", "https://www.example.com/story", "two"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 1)
	assert.Equal(t, 2, clusters[0].Size())
}

func TestClusterURLDedupDisabled(t *testing.T) {
	items := []domain.NewsItem{
		item("Completely different headline about markets", "https://example.com/story", "one"),
		item("Another unrelated angle on the situation", "https://example.com/story", "two"),
	}

	opts := DefaultOptions()
	opts.URLDedup = false

	clusters := Cluster(items, opts)

	assert.Len(t, clusters, 2)
}

func TestClusterCapacity(t *testing.T) {
	base := "Fed raises interest rates by 25 basis points"
	items := []domain.NewsItem{
		item(base, "https://a.example.com/1", "snippet"),
		item(base+" a", "https://b.example.com/2", "snip"),
		item(base+" b", "https://c.example.com/3", "snip"),
		item(base+" c", "https://d.example.com/4", "snip"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 1)
	assert.Equal(t, 1+DefaultMaxSupporting, clusters[0].Size())
}

func TestClusterPrimarySwapAtCapacity(t *testing.T) {
	base := "Fed raises interest rates by 25 basis points"
	items := []domain.NewsItem{
		item(base, "https://a.example.com/1", "short"),
		item(base+" a", "https://b.example.com/2", "snip"),
		item(base+" b", "https://c.example.com/3", "snip"),
		item(base+" c", "https://d.example.com/4", "the longest snippet of them all"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 1)
	// The late richer item takes over as primary; the displaced primary is
	// dropped because supporting is full.
	assert.Equal(t, "the longest snippet of them all", clusters[0].Primary.Snippet)
	assert.Equal(t, 1+DefaultMaxSupporting, clusters[0].Size())
}

func TestClusterIDStable(t *testing.T) {
	items := []domain.NewsItem{
		item("Fed raises interest rates by 25 basis points", "https://a.example.com/1", "short"),
		item("Fed raises interest rates by 25 basis points now", "https://b.example.com/2", "a longer snippet"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 1)

	again := Cluster(items, DefaultOptions())
	require.Len(t, again, 1)

	// The id derives from the founding item and survives primary swaps.
	assert.Equal(t, clusters[0].ID, again[0].ID)
	assert.NotEmpty(t, clusters[0].ID)
	assert.Equal(t, "a longer snippet", clusters[0].Primary.Snippet)
}

func TestClusterFirstClusterWins(t *testing.T) {
	items := []domain.NewsItem{
		item("China property market slump deepens further", "https://a.example.com/1", "one"),
		item("Germany industrial output falls sharply in July", "https://b.example.com/2", "two"),
		item("China property market slump deepens", "https://c.example.com/3", "three plus"),
	}

	clusters := Cluster(items, DefaultOptions())

	require.Len(t, clusters, 2)
	assert.Equal(t, 2, clusters[0].Size())
	assert.Equal(t, 1, clusters[1].Size())
}
