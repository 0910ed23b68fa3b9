package dedup

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "tracking params and fragment stripped",
			raw:  "https://www.Example.com/news?utm_source=x&utm_medium=mail&gclid=abc#section",
			want: "https://example.com/news",
		},
		{
			name: "remaining params sorted by key then value",
			raw:  "https://example.com/a?z=1&a=2&a=1",
			want: "https://example.com/a?a=1&a=2&z=1",
		},
		{
			name: "empty path becomes root",
			raw:  "HTTPS://EXAMPLE.COM",
			want: "https://example.com/",
		},
		{
			name: "mixed tracking and content params",
			raw:  "https://news.example.com/story?id=42&fbclid=zzz&mc_cid=1",
			want: "https://news.example.com/story?id=42",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "malformed url unchanged",
			raw:  "http://bad url with spaces",
			want: "http://bad url with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.raw); got != tt.want {
				t.Fatalf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalURLIdempotent(t *testing.T) {
	raw := "https://www.example.com/path?utm_campaign=daily&b=2&a=1#frag"

	once := CanonicalURL(raw)
	twice := CanonicalURL(once)

	if once != twice {
		t.Fatalf("CanonicalURL not idempotent: %q != %q", once, twice)
	}
}
