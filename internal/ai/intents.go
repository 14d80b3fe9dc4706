package ai

import "strings"

// Intent is the inferred purpose of a query
type Intent string

// Intents
const (
	IntentPrice       Intent = "price_query"
	IntentTrend       Intent = "trend_query"
	IntentMarketCap   Intent = "market_cap_query"
	IntentComparison  Intent = "comparison_query"
	IntentGenericInfo Intent = "generic_info"
	IntentUnknown     Intent = "unknown"
	IntentEmptyQuery  Intent = "empty_query"
)

const intentCutoff = 60

// Classifier maps free text onto an intent with a confidence score
type Classifier struct {
	lex      *Lexicon
	keywords []string
}

// NewClassifier creates a classifier over lex, or the default lexicon when nil
func NewClassifier(lex *Lexicon) *Classifier {
	if lex == nil {
		lex = defaultLexicon
	}
	keywords := make([]string, len(lex.keywords))
	for i, k := range lex.keywords {
		keywords[i] = k.text
	}
	return &Classifier{lex: lex, keywords: keywords}
}

// Detect returns the intent of the first keyword contained in the query, in table order.
// Without a literal hit the closest keyword above the cutoff decides, else IntentUnknown.
func (c *Classifier) Detect(query string) Intent {
	lower := strings.ToLower(query)
	for _, k := range c.lex.keywords {
		if strings.Contains(lower, k.text) {
			return k.intent
		}
	}

	if idx, _, ok := bestMatch(lower, c.keywords, intentCutoff); ok {
		return c.lex.keywords[idx].intent
	}
	return IntentUnknown
}

// Confidence scores how strongly the query supports intent, in [0, 1]
func (c *Classifier) Confidence(query string, intent Intent) float64 {
	if intent == IntentUnknown {
		return 0
	}

	var targets []string
	for _, k := range c.lex.keywords {
		if k.intent == intent {
			targets = append(targets, k.text)
		}
	}

	lower := strings.ToLower(query)
	for _, t := range targets {
		if strings.Contains(lower, t) {
			return 1
		}
	}

	if _, score, ok := bestMatch(lower, targets, 0); ok {
		return score / 100
	}
	return 0
}

var defaultClassifier = NewClassifier(nil)

// DetectIntent classifies query using the default lexicon
func DetectIntent(query string) Intent {
	return defaultClassifier.Detect(query)
}

// GetIntentConfidence scores intent for query using the default lexicon
func GetIntentConfidence(query string, intent Intent) float64 {
	return defaultClassifier.Confidence(query, intent)
}
