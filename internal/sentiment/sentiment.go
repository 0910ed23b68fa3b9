// Package sentiment implements the lexicon-based sentiment scorer consumed
// by the ranking engine. It produces a per-card boost multiplier (extreme
// sentiment reads as more newsworthy) and an aggregate market mood for the
// brief header. Scoring is local, deterministic, and free of I/O.
package sentiment

import (
	"fmt"
	"math"
	"strings"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

const (
	intensifierWeight = 1.5
	negatorWeight     = -0.8

	// Compound thresholds for per-card classification.
	cardBullishThreshold = 0.1
	cardBearishThreshold = -0.1

	// Compound thresholds for the aggregate mood label.
	moodStrongThreshold = 0.15
	moodMildThreshold   = 0.05
)

// Analyzer scores financial text against the bullish/bearish lexicon.
// The zero value is not usable; construct with New.
type Analyzer struct{}

// New returns a ready Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Compound returns a normalized sentiment score in [-1, 1] for the text.
// 0 means neutral or no sentiment-bearing tokens.
func (a *Analyzer) Compound(text string) float64 {
	if text == "" {
		return 0
	}

	tokens := strings.Fields(strings.ToLower(text))

	var sum float64

	hits := 0

	for i, token := range tokens {
		polarity := tokenPolarity(token)
		if polarity == 0 {
			continue
		}

		weight := 1.0

		if i > 0 {
			if _, ok := intensifiers[trimToken(tokens[i-1])]; ok {
				weight = intensifierWeight
			}

			if _, ok := negators[trimToken(tokens[i-1])]; ok {
				weight = negatorWeight
			}
		}

		sum += polarity * weight
		hits++
	}

	if hits == 0 {
		return 0
	}

	// Squash into [-1, 1]; tanh keeps single-hit snippets away from the
	// extremes while saturating on dense sentiment.
	return math.Tanh(sum / 2)
}

func tokenPolarity(token string) float64 {
	token = trimToken(token)

	if _, ok := bullishTerms[token]; ok {
		return 1
	}

	if _, ok := bearishTerms[token]; ok {
		return -1
	}

	return 0
}

func trimToken(token string) string {
	return strings.Trim(token, ".,;:!?()'\"")
}

// cardText combines a card's fields with ranking weights: entity 1x,
// trend 2x, why-it-matters 1.5x, data point 0.5x.
func cardText(card domain.FactCard) string {
	parts := []string{card.Entity}

	if card.Trend != "" {
		parts = append(parts, card.Trend, card.Trend)
	}

	if card.WhyItMatters != "" {
		parts = append(parts, card.WhyItMatters, halfText(card.WhyItMatters))
	}

	if card.DataPoint != "" {
		parts = append(parts, halfText(card.DataPoint))
	}

	return strings.Join(parts, " ")
}

// halfText returns the first half of s counted in runes so multibyte
// characters are never split.
func halfText(s string) string {
	runes := []rune(s)

	return string(runes[:len(runes)/2])
}

// Boost maps sentiment extremity to a ranking multiplier in
// [boostMin, boostMax]. Strong sentiment in either direction earns the
// maximum boost; very neutral text takes the minimum as a mild penalty.
func (a *Analyzer) Boost(card domain.FactCard, boostMin, boostMax float64) float64 {
	abs := math.Abs(a.Compound(cardText(card)))

	lowBoost := 1.0 + (boostMax-1.0)*0.33
	midBoost := 1.0 + (boostMax-1.0)*0.67

	switch {
	case abs >= 0.6:
		return boostMax
	case abs >= 0.4:
		ratio := (abs - 0.4) / 0.2

		return midBoost + ratio*(boostMax-midBoost)
	case abs >= 0.2:
		ratio := (abs - 0.2) / 0.2

		return lowBoost + ratio*(midBoost-lowBoost)
	case abs >= 0.1:
		return 1.0
	default:
		return boostMin
	}
}

// Mood aggregates per-card sentiment into the brief's market mood summary.
func (a *Analyzer) Mood(cards []domain.FactCard) *domain.MoodSummary {
	if len(cards) == 0 {
		return &domain.MoodSummary{
			Label:   "neutral",
			Signal:  "Neutral",
			Summary: "No sentiment data available",
		}
	}

	var sum float64

	bullish, bearish, neutral := 0, 0, 0

	for _, card := range cards {
		compound := a.Compound(cardText(card))
		sum += compound

		switch {
		case compound >= cardBullishThreshold:
			bullish++
		case compound <= cardBearishThreshold:
			bearish++
		default:
			neutral++
		}
	}

	avg := sum / float64(len(cards))
	label, signal := moodLabel(avg)

	return &domain.MoodSummary{
		OverallScore: math.Round(avg*1000) / 1000,
		Label:        label,
		Signal:       signal,
		BullishCount: bullish,
		BearishCount: bearish,
		NeutralCount: neutral,
		Summary:      moodSummary(len(cards), bullish, bearish, neutral),
	}
}

func moodLabel(avg float64) (string, string) {
	switch {
	case avg >= moodStrongThreshold:
		return "bullish", "Risk-On"
	case avg <= -moodStrongThreshold:
		return "bearish", "Risk-Off"
	case avg >= moodMildThreshold:
		return "slightly_bullish", "Cautiously Optimistic"
	case avg <= -moodMildThreshold:
		return "slightly_bearish", "Cautiously Pessimistic"
	default:
		return "neutral", "Mixed/Neutral"
	}
}

func moodSummary(total, bullish, bearish, neutral int) string {
	switch {
	case bullish > bearish*2:
		return fmt.Sprintf("Headlines skew bullish (%d/%d positive stories)", bullish, total)
	case bearish > bullish*2:
		return fmt.Sprintf("Headlines skew bearish (%d/%d negative stories)", bearish, total)
	case bullish > bearish:
		return fmt.Sprintf("Slightly positive tone (%d bullish vs %d bearish)", bullish, bearish)
	case bearish > bullish:
		return fmt.Sprintf("Slightly negative tone (%d bearish vs %d bullish)", bearish, bullish)
	default:
		return fmt.Sprintf("Balanced sentiment (%d bullish, %d bearish, %d neutral)", bullish, bearish, neutral)
	}
}
