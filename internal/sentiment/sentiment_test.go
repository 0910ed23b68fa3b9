package sentiment

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/markets-brief/internal/core/domain"
)

func TestCardTextMultibyteFields(t *testing.T) {
	card := domain.FactCard{
		Entity:       "Küchenmaschinen AG",
		Trend:        "surged",
		WhyItMatters: "größter Gewinn seit Börsengang, Anleger griffen zu",
		DataPoint:    "営業利益は前年比で大幅増",
	}

	text := cardText(card)

	assert.True(t, utf8.ValidString(text))

	assert.Equal(t, "abc", halfText("abcdef"))
	assert.Equal(t, "営業", halfText("営業利益"))
}

func TestCompound(t *testing.T) {
	a := New()

	assert.Zero(t, a.Compound(""))
	assert.Zero(t, a.Compound("the quarterly report was published on schedule"))

	bullish := a.Compound("stocks surge and rally on strong growth")
	assert.Positive(t, bullish)

	bearish := a.Compound("markets plunge as recession warning hits")
	assert.Negative(t, bearish)

	// Saturation stays inside [-1, 1].
	dense := a.Compound("surge rally soar jump gain beat upgrade bullish breakout strong")
	assert.LessOrEqual(t, dense, 1.0)
	assert.Greater(t, dense, 0.9)
}

func TestCompoundIntensifierAndNegator(t *testing.T) {
	a := New()

	plain := a.Compound("shares gain today")
	intensified := a.Compound("shares sharply gain today")
	assert.Greater(t, intensified, plain)

	negated := a.Compound("shares not gain today")
	assert.Negative(t, negated)
}

func TestBoostBands(t *testing.T) {
	a := New()

	const (
		boostMin = 0.95
		boostMax = 1.15
	)

	// No sentiment-bearing tokens: minimum boost.
	flat := domain.FactCard{Entity: "Treasury", Trend: "auction completed on schedule"}
	assert.InDelta(t, boostMin, a.Boost(flat, boostMin, boostMax), 1e-9)

	// Dense sentiment saturates to the maximum.
	hot := domain.FactCard{
		Entity:       "Nvidia",
		Trend:        "shares surge rally soar on strong beat",
		WhyItMatters: "bullish breakout signals further upside and growth",
	}
	assert.InDelta(t, boostMax, a.Boost(hot, boostMin, boostMax), 1e-9)

	// Boosts stay within the configured range for arbitrary cards.
	cards := []domain.FactCard{
		{Entity: "Apple", Trend: "gain"},
		{Entity: "Fed", Trend: "hawkish tightening ahead"},
		{Entity: "ECB", Trend: "held rates"},
		{Entity: "Oil", Trend: "prices drop on weak demand", WhyItMatters: "downside risk grows"},
	}

	for _, card := range cards {
		boost := a.Boost(card, boostMin, boostMax)
		assert.GreaterOrEqual(t, boost, boostMin)
		assert.LessOrEqual(t, boost, boostMax)
	}
}

func TestBoostSymmetricInDirection(t *testing.T) {
	a := New()

	up := domain.FactCard{Entity: "Stocks", Trend: "surge rally soar jump gain beat"}
	down := domain.FactCard{Entity: "Stocks", Trend: "plunge crash tumble drop fall miss"}

	// Extremity matters, not direction.
	assert.InDelta(t, a.Boost(up, 0.95, 1.15), a.Boost(down, 0.95, 1.15), 1e-9)
}

func TestMoodCountsAndLabel(t *testing.T) {
	a := New()

	mood := a.Mood([]domain.FactCard{
		{Entity: "Nvidia", Trend: "shares surge on strong beat"},
		{Entity: "Apple", Trend: "sales gain with upside growth"},
		{Entity: "Oil", Trend: "prices plunge on recession warning"},
		{Entity: "Treasury", Trend: "auction completed"},
	})

	require.NotNil(t, mood)
	assert.Equal(t, 2, mood.BullishCount)
	assert.Equal(t, 1, mood.BearishCount)
	assert.Equal(t, 1, mood.NeutralCount)
	assert.NotEmpty(t, mood.Label)
	assert.NotEmpty(t, mood.Signal)
	assert.NotEmpty(t, mood.Summary)
	assert.LessOrEqual(t, math.Abs(mood.OverallScore), 1.0)
}

func TestMoodEmpty(t *testing.T) {
	mood := New().Mood(nil)

	require.NotNil(t, mood)
	assert.Equal(t, "neutral", mood.Label)
	assert.Zero(t, mood.OverallScore)
}

func TestMoodLabelThresholds(t *testing.T) {
	tests := []struct {
		avg    float64
		label  string
		signal string
	}{
		{0.3, "bullish", "Risk-On"},
		{0.1, "slightly_bullish", "Cautiously Optimistic"},
		{0.0, "neutral", "Mixed/Neutral"},
		{-0.1, "slightly_bearish", "Cautiously Pessimistic"},
		{-0.3, "bearish", "Risk-Off"},
	}

	for _, tt := range tests {
		label, signal := moodLabel(tt.avg)
		assert.Equalf(t, tt.label, label, "avg %v", tt.avg)
		assert.Equalf(t, tt.signal, signal, "avg %v", tt.avg)
	}
}
