package sentiment

// Finance-tuned term lists. The general-purpose lexicon misses market
// jargon like "dovish" or "breakout", so scoring runs over these sets with
// a whole-token match.
var bullishTerms = map[string]struct{}{
	"surge": {}, "rally": {}, "soar": {}, "jump": {}, "gain": {}, "beat": {},
	"exceed": {}, "outperform": {}, "upgrade": {}, "bullish": {}, "optimistic": {},
	"recovery": {}, "growth": {}, "expansion": {}, "dovish": {}, "stimulus": {},
	"easing": {}, "upside": {}, "breakout": {}, "strong": {},
}

var bearishTerms = map[string]struct{}{
	"plunge": {}, "crash": {}, "tumble": {}, "drop": {}, "fall": {}, "miss": {},
	"decline": {}, "slump": {}, "downgrade": {}, "bearish": {}, "pessimistic": {},
	"recession": {}, "contraction": {}, "cut": {}, "hawkish": {}, "tightening": {},
	"downside": {}, "breakdown": {}, "weak": {}, "warning": {},
}

// intensifiers strengthen an adjacent sentiment term.
var intensifiers = map[string]struct{}{
	"very": {}, "sharply": {}, "strongly": {}, "significantly": {}, "massively": {},
	"record": {}, "historic": {}, "major": {}, "steep": {}, "dramatic": {},
}

// negators flip the polarity of the following sentiment term.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "barely": {}, "hardly": {},
}
