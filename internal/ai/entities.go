package ai

import "strings"

const (
	// DefaultCoin is used when no coin can be found in a query
	DefaultCoin = "bitcoin"
	// DefaultTimeframe is used when no timeframe can be found in a query
	DefaultTimeframe = Timeframe7D
	// DefaultMinCoins is the number of coins extracted for comparisons
	DefaultMinCoins = 2

	coinCutoff      = 70
	timeframeCutoff = 70
)

// Coins appended when a comparison names too few
var comparisonDefaults = []string{"bitcoin", "ethereum", "dogecoin", "solana"}

// Entities extracted from a query
type Entities struct {
	Coin       string   `json:"coin,omitempty"`
	Coins      []string `json:"coins,omitempty"`
	Timeframe  string   `json:"timeframe,omitempty"`
	QueryLower string   `json:"query_lower,omitempty"`
}

// Extractor resolves coins and timeframes from free text
type Extractor struct {
	lex *Lexicon
}

// NewExtractor creates an extractor over lex, or the default lexicon when nil
func NewExtractor(lex *Lexicon) *Extractor {
	if lex == nil {
		lex = defaultLexicon
	}
	return &Extractor{lex: lex}
}

// Extract resolves every entity. Coin and Coins are independent passes and may disagree.
func (e *Extractor) Extract(query string) Entities {
	return Entities{
		Coin:       e.Coin(query, DefaultCoin),
		Coins:      e.Coins(query, DefaultMinCoins),
		Timeframe:  e.Timeframe(query, DefaultTimeframe),
		QueryLower: strings.ToLower(query),
	}
}

// Coin returns the first coin term found in the query, falling back to fuzzy matching and then def
func (e *Extractor) Coin(query, def string) string {
	lower := strings.ToLower(query)
	for _, term := range e.lex.terms {
		if strings.Contains(lower, term) {
			return e.lex.NormalizeCoin(term)
		}
	}

	if idx, _, ok := bestMatch(lower, e.lex.terms, coinCutoff); ok {
		return e.lex.NormalizeCoin(e.lex.terms[idx])
	}
	return def
}

// Coins returns exactly minCoins canonical ids: those mentioned in the query in order of
// first appearance in the lexicon, backfilled from the comparison defaults
func (e *Extractor) Coins(query string, minCoins int) []string {
	lower := strings.ToLower(query)
	var found []string
	seen := make(map[string]bool)

	for _, term := range e.lex.terms {
		id := e.lex.NormalizeCoin(term)
		if strings.Contains(lower, term) && !seen[id] {
			found = append(found, id)
			seen[id] = true
		}
	}

	if len(found) < minCoins {
		for _, id := range comparisonDefaults {
			if len(found) >= minCoins {
				break
			}
			if !seen[id] {
				found = append(found, id)
				seen[id] = true
			}
		}
	}

	if minCoins >= 0 && len(found) > minCoins {
		found = found[:minCoins]
	}
	return found
}

// Timeframe returns the code of the longest timeframe phrase in the query,
// falling back to fuzzy matching and then def
func (e *Extractor) Timeframe(query, def string) string {
	lower := strings.ToLower(query)

	best := -1
	for i, p := range e.lex.timeframes {
		if !strings.Contains(lower, p.text) {
			continue
		}
		if best < 0 || len(p.text) > len(e.lex.timeframes[best].text) {
			best = i
		}
	}
	if best >= 0 {
		return e.lex.timeframes[best].code
	}

	texts := make([]string, len(e.lex.timeframes))
	for i, p := range e.lex.timeframes {
		texts[i] = p.text
	}
	if idx, _, ok := bestMatch(lower, texts, timeframeCutoff); ok {
		return e.lex.timeframes[idx].code
	}
	return def
}

var defaultExtractor = NewExtractor(nil)

// ExtractEntities resolves every entity using the default lexicon
func ExtractEntities(query string) Entities {
	return defaultExtractor.Extract(query)
}

// ExtractCoin resolves the primary coin using the default lexicon
func ExtractCoin(query string) string {
	return defaultExtractor.Coin(query, DefaultCoin)
}

// ExtractMultipleCoins resolves minCoins coins using the default lexicon
func ExtractMultipleCoins(query string, minCoins int) []string {
	return defaultExtractor.Coins(query, minCoins)
}

// ExtractTimeframe resolves the timeframe code using the default lexicon
func ExtractTimeframe(query string) string {
	return defaultExtractor.Timeframe(query, DefaultTimeframe)
}
