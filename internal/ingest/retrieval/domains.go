package retrieval

import (
	"net/url"
	"strings"
)

const wwwPrefix = "www."

// domainAllowed checks a URL's host against the configured allowlist.
// An empty allowlist allows everything; matching is www-insensitive and
// accepts subdomains of allowed entries. Unparseable URLs are allowed so
// a bad allowlist entry never drops valid content.
func domainAllowed(rawURL string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return true
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), wwwPrefix)

	for _, entry := range allowed {
		entry = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(entry)), wwwPrefix)
		if entry == "" {
			continue
		}

		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}

	return false
}
