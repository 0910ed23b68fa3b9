// Package dedup implements lexical duplicate detection for news items:
// URL canonicalization plus two independent title similarity measures.
// The rules are deliberately simple string heuristics; clustering quality
// depends on their exact behavior staying stable.
package dedup

import (
	"net/url"
	"sort"
	"strings"
)

const wwwPrefix = "www."

// trackingParams holds query parameter keys that never identify content
// and must be stripped before comparing URLs.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
	"fbclid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"_hsenc":       {},
	"_hsmi":        {},
	"mkt_tok":      {},
}

type queryParam struct {
	key   string
	value string
}

// CanonicalURL normalizes a URL for exact-duplicate detection: lowercases
// the scheme and host, strips a leading "www.", removes tracking query
// parameters and the fragment, and sorts the remaining parameters.
// Malformed input is returned unchanged.
func CanonicalURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), wwwPrefix)

	path := parsed.EscapedPath()
	if path == "" && host != "" {
		path = "/"
	}

	query := canonicalQuery(parsed.Query())

	var b strings.Builder
	if scheme != "" {
		b.WriteString(scheme)
		b.WriteString("://")
	}

	b.WriteString(host)
	b.WriteString(path)

	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}

	return b.String()
}

func canonicalQuery(values url.Values) string {
	var params []queryParam

	for key, vals := range values {
		if _, tracking := trackingParams[strings.ToLower(key)]; tracking {
			continue
		}

		for _, v := range vals {
			params = append(params, queryParam{key: key, value: v})
		}
	}

	if len(params) == 0 {
		return ""
	}

	sort.Slice(params, func(i, j int) bool {
		if params[i].key != params[j].key {
			return params[i].key < params[j].key
		}

		return params[i].value < params[j].value
	})

	var b strings.Builder

	for i, p := range params {
		if i > 0 {
			b.WriteString("&")
		}

		b.WriteString(url.QueryEscape(p.key))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.value))
	}

	return b.String()
}
