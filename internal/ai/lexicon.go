package ai

import "strings"

// Coin is a supported cryptocurrency and the terms that refer to it
type Coin struct {
	ID         string
	Name       string
	Symbol     string
	ProviderID string
	Terms      []string
}

// Timeframe codes
const (
	Timeframe1D  = "1d"
	Timeframe7D  = "7d"
	Timeframe10D = "10d"
	Timeframe14D = "14d"
	Timeframe30D = "30d"
	Timeframe90D = "90d"
	Timeframe1Y  = "1y"
)

type phrase struct {
	text string
	code string
}

type keyword struct {
	text   string
	intent Intent
}

// Lexicon holds the read-only lookup tables used by the extractor and classifier
type Lexicon struct {
	coins      []Coin
	terms      []string
	aliases    map[string]string
	byID       map[string]*Coin
	timeframes []phrase
	keywords   []keyword
}

// Supported coins, in scan order. Terms are checked in declaration order.
var defaultCoins = []Coin{
	{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Terms: []string{"bitcoin", "btc"}},
	{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Terms: []string{"ethereum", "eth", "ether"}},
	{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", Terms: []string{"dogecoin", "doge"}},
	{ID: "solana", Name: "Solana", Symbol: "SOL", Terms: []string{"solana", "sol"}},
	{ID: "cardano", Name: "Cardano", Symbol: "ADA", Terms: []string{"cardano", "ada"}},
	{ID: "polygon", Name: "Polygon", Symbol: "MATIC", ProviderID: "matic-network", Terms: []string{"polygon", "matic"}},
	{ID: "chainlink", Name: "Chainlink", Symbol: "LINK", Terms: []string{"chainlink", "link"}},
	{ID: "ripple", Name: "Ripple", Symbol: "XRP", Terms: []string{"ripple", "xrp"}},
	{ID: "litecoin", Name: "Litecoin", Symbol: "LTC", Terms: []string{"litecoin", "ltc"}},
	{ID: "avalanche", Name: "Avalanche", Symbol: "AVAX", ProviderID: "avalanche-2", Terms: []string{"avalanche", "avax"}},
	{ID: "polkadot", Name: "Polkadot", Symbol: "DOT", Terms: []string{"polkadot", "dot"}},
	{ID: "shiba-inu", Name: "Shiba Inu", Symbol: "SHIB", Terms: []string{"shiba inu", "shiba-inu", "shib"}},
}

// Timeframe phrases. Longest substring match wins; on equal length the earlier entry wins.
var defaultTimeframes = []phrase{
	// Multi-day
	{"10 day", "10d"}, {"10 days", "10d"}, {"10-day", "10d"}, {"10-days", "10d"}, {"10d", "10d"},
	{"14 day", "14d"}, {"14 days", "14d"}, {"14-day", "14d"}, {"14-days", "14d"}, {"14d", "14d"},
	{"30 day", "30d"}, {"30 days", "30d"}, {"30-day", "30d"}, {"30-days", "30d"},
	{"90 day", "90d"}, {"90 days", "90d"}, {"90-day", "90d"}, {"90-days", "90d"}, {"90d", "90d"},
	{"365 days", "1y"},

	// Week
	{"7 day", "7d"}, {"7 days", "7d"}, {"7-day", "7d"}, {"7-days", "7d"}, {"7d", "7d"},
	{"week", "7d"}, {"weekly", "7d"}, {"1 week", "7d"}, {"one week", "7d"},
	{"2 weeks", "14d"}, {"two weeks", "14d"}, {"2 week", "14d"},

	// Month
	{"month", "30d"}, {"monthly", "30d"}, {"1 month", "30d"}, {"one month", "30d"}, {"30d", "30d"},
	{"3 months", "90d"}, {"three months", "90d"}, {"quarter", "90d"}, {"quarterly", "90d"},
	{"12 months", "1y"}, {"12 month", "1y"},

	// Year
	{"1 year", "1y"}, {"year", "1y"}, {"yearly", "1y"}, {"1y", "1y"},

	// Day
	{"1 day", "1d"}, {"one day", "1d"}, {"daily", "1d"},
	{"today", "1d"}, {"24 hours", "1d"}, {"24h", "1d"}, {"1d", "1d"},
}

// Intent keywords. The first keyword found in the query decides the intent.
var defaultKeywords = []keyword{
	{"price", IntentPrice},
	{"current price", IntentPrice},
	{"cost", IntentPrice},
	{"value", IntentPrice},
	{"worth", IntentPrice},

	{"trend", IntentTrend},
	{"chart", IntentTrend},
	{"graph", IntentTrend},
	{"performance", IntentTrend},
	{"movement", IntentTrend},
	{"change", IntentTrend},

	{"market cap", IntentMarketCap},
	{"market capitalization", IntentMarketCap},
	{"mcap", IntentMarketCap},

	{"compare", IntentComparison},
	{"vs", IntentComparison},
	{"versus", IntentComparison},
	{"comparison", IntentComparison},
	{"against", IntentComparison},

	{"about", IntentGenericInfo},
	{"info", IntentGenericInfo},
	{"information", IntentGenericInfo},
	{"what is", IntentGenericInfo},
	{"tell me", IntentGenericInfo},
	{"explain", IntentGenericInfo},
}

var defaultLexicon = newLexicon(defaultCoins, defaultTimeframes, defaultKeywords)

// DefaultLexicon returns the process-wide lexicon
func DefaultLexicon() *Lexicon {
	return defaultLexicon
}

func newLexicon(coins []Coin, timeframes []phrase, keywords []keyword) *Lexicon {
	lex := &Lexicon{
		coins:      coins,
		aliases:    make(map[string]string),
		byID:       make(map[string]*Coin, len(coins)),
		timeframes: timeframes,
		keywords:   keywords,
	}
	for i := range lex.coins {
		c := &lex.coins[i]
		lex.byID[c.ID] = c
		for _, term := range c.Terms {
			lex.terms = append(lex.terms, term)
			lex.aliases[term] = c.ID
		}
	}
	return lex
}

// NormalizeCoin converts a coin name or symbol to its canonical id
func (l *Lexicon) NormalizeCoin(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if id, ok := l.aliases[lower]; ok {
		return id
	}
	return lower
}

// Coin looks up a supported coin by canonical id
func (l *Lexicon) Coin(id string) (Coin, bool) {
	c, ok := l.byID[id]
	if !ok {
		return Coin{}, false
	}
	return *c, true
}

// ProviderID returns the market data provider id for a canonical coin id
func (l *Lexicon) ProviderID(id string) string {
	if c, ok := l.byID[id]; ok && c.ProviderID != "" {
		return c.ProviderID
	}
	return id
}

// Coins returns the supported coins in declaration order
func (l *Lexicon) Coins() []Coin {
	out := make([]Coin, len(l.coins))
	copy(out, l.coins)
	return out
}

// NormalizeCoinName converts a coin name or symbol using the default lexicon
func NormalizeCoinName(name string) string {
	return defaultLexicon.NormalizeCoin(name)
}
