package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/metrics"
	"github.com/edibez/cryptodash/internal/price"
)

// MarketData is the market data provider consumed by the responder
type MarketData interface {
	Coin(ctx context.Context, id string) (*price.Coin, error)
	PriceHistory(ctx context.Context, id string, days int) ([]price.PricePoint, error)
}

const maxComparedCoins = 3

var errZeroStartPrice = errors.New("price history starts at zero")

var coinInfo = map[string]string{
	"bitcoin":  "Bitcoin (BTC) is the first and largest cryptocurrency, created by Satoshi Nakamoto in 2009. It's a decentralized digital currency that operates on a peer-to-peer network without a central authority.",
	"ethereum": "Ethereum (ETH) is a decentralized blockchain platform that enables smart contracts and decentralized applications (dApps). It was created by Vitalik Buterin in 2015.",
	"dogecoin": "Dogecoin (DOGE) started as a meme-based cryptocurrency featuring the Shiba Inu dog. Despite its origins, it has gained significant popularity and community support.",
	"solana":   "Solana (SOL) is a high-performance blockchain platform designed for decentralized applications and crypto-currencies. It's known for its fast transaction speeds and low fees.",
}

const helpMessage = "Sorry, I didn't understand your question. I can help you with:\n" +
	"• Current prices (e.g., 'What is the price of Bitcoin?')\n" +
	"• Price trends (e.g., 'Show me the 7-day trend of Ethereum')\n" +
	"• Market caps (e.g., 'What is Bitcoin's market cap?')\n" +
	"• Comparisons (e.g., 'Compare Bitcoin and Ethereum over 30 days')\n" +
	"• General info (e.g., 'Tell me about Solana')"

// Responder turns an intent and its entities into an answer.
// Every method returns a non-empty answer; provider failures become synthetic answers.
type Responder struct {
	market   MarketData
	fallback Fallback
	lex      *Lexicon
	logger   logger.Logger
}

// NewResponder creates a responder. A nil fallback uses random values.
func NewResponder(market MarketData, fallback Fallback, log logger.Logger) *Responder {
	if market == nil {
		market = price.Offline{}
	}
	if fallback == nil {
		fallback = NewRandomFallback(0)
	}
	return &Responder{
		market:   market,
		fallback: fallback,
		lex:      defaultLexicon,
		logger:   log.With(map[string]interface{}{"component": "responder"}),
	}
}

func (r *Responder) displayName(coin string) string {
	if c, ok := r.lex.Coin(coin); ok {
		return c.Name
	}
	return titleCaser.String(coin)
}

func (r *Responder) fellBack(handler, coin string, err error) {
	metrics.QAFallbacks.WithLabelValues(handler).Inc()
	r.logger.Warn("market data unavailable, using fallback", map[string]interface{}{
		"handler": handler,
		"coin":    coin,
		"error":   err.Error(),
	})
}

// Price answers a current price question
func (r *Responder) Price(ctx context.Context, coin string) string {
	data, err := r.market.Coin(ctx, r.lex.ProviderID(coin))
	if err != nil {
		r.fellBack("price", coin, err)
		return fmt.Sprintf("The current price of %s is approximately %s.",
			r.displayName(coin), money(r.fallback.Price(coin)))
	}
	if data == nil {
		return fmt.Sprintf("I couldn't find current price data for %s. Please try again later.", r.displayName(coin))
	}

	name := data.Name
	if name == "" {
		name = r.displayName(coin)
	}
	return fmt.Sprintf("The current price of %s (%s) is %s.",
		name, strings.ToUpper(data.Symbol), formatPrice(data.CurrentPrice))
}

// Trend answers a price movement question over timeframe
func (r *Responder) Trend(ctx context.Context, coin, timeframe string) string {
	answer, err := r.liveTrend(ctx, coin, timeframe)
	if err == nil {
		return answer
	}

	r.fellBack("trend", coin, err)
	change := r.fallback.Change(15)
	verb, icon := "decreased", "📉"
	if change > 0 {
		verb, icon = "increased", "📈"
	}
	return fmt.Sprintf("%s %s has %s by %.2f%% over the last %s.",
		icon, r.displayName(coin), verb, math.Abs(change), timeframeLabel(timeframe))
}

func (r *Responder) liveTrend(ctx context.Context, coin, timeframe string) (string, error) {
	id := r.lex.ProviderID(coin)

	if timeframe == Timeframe1D {
		data, err := r.market.Coin(ctx, id)
		if err != nil {
			return "", err
		}
		if data != nil && data.PriceChangePercentage24h != nil {
			name := data.Name
			if name == "" {
				name = r.displayName(coin)
			}
			return trendSentence(name, *data.PriceChangePercentage24h, timeframeLabel(Timeframe1D)), nil
		}
	} else {
		change, ok, err := r.historyChange(ctx, id, daysFor(timeframe))
		if err != nil {
			return "", err
		}
		if ok {
			return trendSentence(r.displayName(coin), change, timeframeLabel(timeframe)), nil
		}
	}

	return fmt.Sprintf("I couldn't find sufficient trend data for %s. Please try again later.", r.displayName(coin)), nil
}

// historyChange returns the percent change between the first and last points.
// ok is false when fewer than two points are available.
func (r *Responder) historyChange(ctx context.Context, id string, days int) (change float64, ok bool, err error) {
	_, change, ok, err = r.historyEndpoints(ctx, id, days)
	return change, ok, err
}

func (r *Responder) historyEndpoints(ctx context.Context, id string, days int) (last, change float64, ok bool, err error) {
	history, err := r.market.PriceHistory(ctx, id, days)
	if err != nil {
		return 0, 0, false, err
	}
	if len(history) < 2 {
		return 0, 0, false, nil
	}
	first, last := history[0].Price, history[len(history)-1].Price
	if first == 0 {
		return 0, 0, false, errZeroStartPrice
	}
	return last, (last - first) / first * 100, true, nil
}

func trendSentence(name string, change float64, label string) string {
	verb, icon := direction(change)
	return fmt.Sprintf("%s %s has %s by %.2f%% over the last %s.", icon, name, verb, math.Abs(change), label)
}

// MarketCap answers a market capitalization question
func (r *Responder) MarketCap(ctx context.Context, coin string) string {
	data, err := r.market.Coin(ctx, r.lex.ProviderID(coin))
	if err != nil {
		r.fellBack("market_cap", coin, err)
		return fmt.Sprintf("The market capitalization of %s is approximately %s.",
			r.displayName(coin), formatMarketCap(r.fallback.MarketCap(coin)))
	}
	if data == nil {
		return fmt.Sprintf("I couldn't find market cap data for %s. Please try again later.", r.displayName(coin))
	}
	if data.MarketCap == 0 {
		return fmt.Sprintf("I couldn't find market cap data for %s.", r.displayName(coin))
	}

	name := data.Name
	if name == "" {
		name = r.displayName(coin)
	}
	return fmt.Sprintf("The market capitalization of %s is %s.", name, formatMarketCap(data.MarketCap))
}

type comparisonRow struct {
	name   string
	price  float64
	change float64
}

// Comparison answers a comparison question over the first three coins.
// Coins without data are skipped; if no coin could be fetched at all the rows are synthetic.
func (r *Responder) Comparison(ctx context.Context, coins []string, timeframe string) string {
	if len(coins) < 2 {
		return "I need at least two cryptocurrencies to compare. Please specify which coins you'd like to compare."
	}
	if len(coins) > maxComparedCoins {
		coins = coins[:maxComparedCoins]
	}

	var (
		rows    []comparisonRow
		lastErr error
	)
	for _, coin := range coins {
		row, ok, err := r.comparisonRow(ctx, coin, timeframe)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			rows = append(rows, row)
		}
	}

	switch {
	case len(rows) >= 2:
		return renderComparison(rows, timeframe)
	case len(rows) == 0 && lastErr != nil:
		r.fellBack("comparison", strings.Join(coins, ","), lastErr)
		mock := make([]comparisonRow, 0, len(coins))
		for _, coin := range coins {
			mock = append(mock, comparisonRow{
				name:   r.displayName(coin),
				price:  r.fallback.ComparisonPrice(coin),
				change: r.fallback.Change(20),
			})
		}
		return renderComparison(mock, timeframe)
	default:
		return "I couldn't find comparison data for the requested cryptocurrencies. Please try again later."
	}
}

func (r *Responder) comparisonRow(ctx context.Context, coin, timeframe string) (comparisonRow, bool, error) {
	id := r.lex.ProviderID(coin)

	if timeframe == Timeframe1D {
		data, err := r.market.Coin(ctx, id)
		if err != nil || data == nil {
			return comparisonRow{}, false, err
		}
		row := comparisonRow{name: data.Name, price: data.CurrentPrice}
		if row.name == "" {
			row.name = r.displayName(coin)
		}
		if data.PriceChangePercentage24h != nil {
			row.change = *data.PriceChangePercentage24h
		}
		return row, true, nil
	}

	last, change, ok, err := r.historyEndpoints(ctx, id, daysFor(timeframe))
	if err != nil || !ok {
		return comparisonRow{}, false, err
	}
	return comparisonRow{name: r.displayName(coin), price: last, change: change}, true, nil
}

func renderComparison(rows []comparisonRow, timeframe string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's a comparison over the last %s:\n\n", timeframeLabel(timeframe))
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s: %s (%s %+.2f%%)", i+1, row.name, formatPrice(row.price), changeIcon(row.change), row.change)
	}
	return b.String()
}

// GenericInfo describes a coin from the static table or a generic template
func (r *Responder) GenericInfo(coin string) string {
	if info, ok := coinInfo[coin]; ok {
		return info
	}
	return fmt.Sprintf("%s is a cryptocurrency. For more detailed information, please visit CoinGecko or other crypto information websites.", r.displayName(coin))
}

// Unknown lists the supported question categories
func (r *Responder) Unknown() string {
	return helpMessage
}
