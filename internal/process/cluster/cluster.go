// Package cluster groups news items into story clusters using the lexical
// match rules from the dedup package.
//
// The algorithm is a deliberate, order-dependent simplification rather
// than transitive clustering: items are scanned in input order, clusters
// in creation order, and an item joins the first cluster whose primary
// title it matches. Keep the explicit loops; an index that changes match
// order changes the output.
package cluster

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	"github.com/smartinvest/markets-brief/internal/process/dedup"
)

const (
	// DefaultTitleThreshold is the edit-similarity cutoff for
	// near-verbatim headline variants.
	DefaultTitleThreshold = 0.85

	// DefaultJaccardThreshold is the token-overlap cutoff for the same
	// story phrased differently across outlets.
	DefaultJaccardThreshold = 0.45

	// DefaultMaxSupporting caps supporting members per cluster.
	DefaultMaxSupporting = 2
)

// Options configures one clustering pass.
type Options struct {
	URLDedup         bool
	TitleThreshold   float64
	JaccardThreshold float64
	MaxSupporting    int
}

// DefaultOptions returns the standard clustering configuration.
func DefaultOptions() Options {
	return Options{
		URLDedup:         true,
		TitleThreshold:   DefaultTitleThreshold,
		JaccardThreshold: DefaultJaccardThreshold,
		MaxSupporting:    DefaultMaxSupporting,
	}
}

// Cluster groups items into story clusters in a single pass over the
// input. An item joins the first existing cluster whose canonical URL it
// shares with any member, or whose primary title it matches on either
// similarity rule. Otherwise it opens a new cluster.
func Cluster(items []domain.NewsItem, opts Options) []*domain.StoryCluster {
	var clusters []*domain.StoryCluster

	canon := make(map[string]string)

	if opts.URLDedup {
		for _, item := range items {
			canon[item.URL] = dedup.CanonicalURL(item.URL)
		}
	}

	for _, item := range items {
		target := findCluster(clusters, item, canon, opts)
		if target == nil {
			clusters = append(clusters, &domain.StoryCluster{
				ID:      clusterID(item),
				Primary: item,
			})

			continue
		}

		admit(target, item, opts.MaxSupporting)
	}

	return clusters
}

// findCluster scans clusters in creation order and returns the first
// match, or nil. Title comparisons are against the current primary only.
func findCluster(clusters []*domain.StoryCluster, item domain.NewsItem, canon map[string]string, opts Options) *domain.StoryCluster {
	for _, c := range clusters {
		if opts.URLDedup && matchesMemberURL(c, canon[item.URL], canon) {
			return c
		}

		if dedup.TitleSimilarity(item.Title, c.Primary.Title) > opts.TitleThreshold {
			return c
		}

		if dedup.JaccardSimilarity(item.Title, c.Primary.Title) > opts.JaccardThreshold {
			return c
		}
	}

	return nil
}

func matchesMemberURL(c *domain.StoryCluster, itemCanon string, canon map[string]string) bool {
	if itemCanon == canon[c.Primary.URL] {
		return true
	}

	for _, s := range c.Supporting {
		if itemCanon == canon[s.URL] {
			return true
		}
	}

	return false
}

// admit applies the admission rule: an item with a longer snippet than the
// current primary takes over as primary, pushing the old primary into
// supporting if capacity remains. Otherwise the item itself goes into
// supporting if capacity remains. Matched items over capacity are dropped.
func admit(c *domain.StoryCluster, item domain.NewsItem, maxSupporting int) {
	if len(c.Supporting) >= maxSupporting {
		if len(item.Snippet) > len(c.Primary.Snippet) {
			c.Primary = item
		}

		return
	}

	if len(item.Snippet) > len(c.Primary.Snippet) {
		displaced := c.Primary
		c.Primary = item
		c.Supporting = append(c.Supporting, displaced)

		return
	}

	c.Supporting = append(c.Supporting, item)
}

func clusterID(item domain.NewsItem) string {
	sum := md5.Sum([]byte(item.Title + item.URL)) //nolint:gosec

	return hex.EncodeToString(sum[:])
}
