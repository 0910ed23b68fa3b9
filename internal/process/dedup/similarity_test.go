package dedup

import (
	"math"
	"testing"
)

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "Fed holds rates steady",
			b:    "Fed holds rates steady",
			want: 1.0,
		},
		{
			name: "case and whitespace insensitive",
			a:    "  FED HOLDS RATES STEADY ",
			b:    "fed holds rates steady",
			want: 1.0,
		},
		{
			name: "empty left",
			a:    "",
			b:    "anything",
			want: 0.0,
		},
		{
			name: "empty right",
			a:    "anything",
			b:    "",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("TitleSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	a := "ECB cuts deposit rate by 25bp"
	b := "ECB lowers its deposit rate"

	if got, rev := TitleSimilarity(a, b), TitleSimilarity(b, a); got != rev {
		t.Fatalf("TitleSimilarity not symmetric: %v != %v", got, rev)
	}
}

func TestTitleSimilarityNearDuplicate(t *testing.T) {
	a := "Nvidia beats earnings expectations in Q3"
	b := "Nvidia beats earnings expectations in Q3 again"

	if got := TitleSimilarity(a, b); got <= 0.85 {
		t.Fatalf("TitleSimilarity = %v, want > 0.85 for near-duplicate", got)
	}

	c := "Oil prices slide on demand worries"
	if got := TitleSimilarity(a, c); got >= 0.85 {
		t.Fatalf("TitleSimilarity = %v, want < 0.85 for unrelated titles", got)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	if got := JaccardSimilarity("Fed raises rates", "Fed raises rates"); got != 1.0 {
		t.Fatalf("JaccardSimilarity identical = %v, want 1.0", got)
	}

	if got := JaccardSimilarity("apple earnings report", "china property market"); got != 0.0 {
		t.Fatalf("JaccardSimilarity disjoint = %v, want 0.0", got)
	}

	if got := JaccardSimilarity("", "anything here"); got != 0.0 {
		t.Fatalf("JaccardSimilarity empty = %v, want 0.0", got)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("US Fed, AI & the EU: a big-move!")

	for _, want := range []string{"us", "fed", "ai", "eu", "the", "bigmove"} {
		if _, ok := tokens[want]; !ok {
			t.Fatalf("Tokenize missing %q in %v", want, tokens)
		}
	}

	if _, ok := tokens["a"]; ok {
		t.Fatal("Tokenize kept short token 'a'")
	}
}
