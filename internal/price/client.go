package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/edibez/cryptodash/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBaseURL is the public CoinGecko API
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	maxMarketsPerPage = 250
	maxSearchResults  = 50
	userAgent         = "cryptodash/1.0"
)

// Client for the CoinGecko market data API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	cache     []Coin
	cacheMu   sync.RWMutex
	cacheTime time.Time
	cacheTTL  time.Duration
}

// NewClient creates a new CoinGecko client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		cacheTTL: 5 * time.Minute,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// get performs a GET against endpoint and decodes the JSON body into out
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	name := strings.SplitN(endpoint, "/", 2)[0]
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.ProviderRequests.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

type coinDetail struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Large string `json:"large"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		MarketCapRank            int                `json:"market_cap_rank"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// Coin fetches the current market data for a coin id. An unknown id fails with ErrNotFound;
// a response without coin data yields nil, nil.
func (c *Client) Coin(ctx context.Context, id string) (*Coin, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")

	var detail coinDetail
	if err := c.get(ctx, "coins/"+url.PathEscape(id), params, &detail); err != nil {
		return nil, err
	}
	if detail.ID == "" {
		return nil, nil
	}

	md := detail.MarketData
	return &Coin{
		ID:                       detail.ID,
		Symbol:                   detail.Symbol,
		Name:                     detail.Name,
		Image:                    detail.Image.Large,
		CurrentPrice:             md.CurrentPrice["usd"],
		MarketCap:                md.MarketCap["usd"],
		MarketCapRank:            md.MarketCapRank,
		TotalVolume:              md.TotalVolume["usd"],
		High24h:                  md.High24h["usd"],
		Low24h:                   md.Low24h["usd"],
		PriceChangePercentage24h: md.PriceChangePercentage24h,
	}, nil
}

type marketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// PriceHistory fetches a price series covering the last days days, oldest first.
// An unknown id fails with ErrNotFound.
func (c *Client) PriceHistory(ctx context.Context, id string, days int) ([]PricePoint, error) {
	if days < 1 {
		days = 1
	}
	interval := "daily"
	if days <= 1 {
		interval = "hourly"
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", interval)

	var chart marketChart
	if err := c.get(ctx, "coins/"+url.PathEscape(id)+"/market_chart", params, &chart); err != nil {
		return nil, err
	}
	return chart.points(), nil
}

func (m marketChart) points() []PricePoint {
	caps := make(map[float64]float64, len(m.MarketCaps))
	for _, p := range m.MarketCaps {
		caps[p[0]] = p[1]
	}
	volumes := make(map[float64]float64, len(m.TotalVolumes))
	for _, p := range m.TotalVolumes {
		volumes[p[0]] = p[1]
	}

	points := make([]PricePoint, 0, len(m.Prices))
	for _, p := range m.Prices {
		point := PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
		}
		if v, ok := caps[p[0]]; ok {
			point.MarketCap = &v
		}
		if v, ok := volumes[p[0]]; ok {
			point.TotalVolume = &v
		}
		points = append(points, point)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// TopCoins returns the top limit coins by market cap
func (c *Client) TopCoins(ctx context.Context, limit int) ([]Coin, error) {
	if limit > maxMarketsPerPage {
		limit = maxMarketsPerPage
	}

	// Check cache
	c.cacheMu.RLock()
	if time.Since(c.cacheTime) < c.cacheTTL && len(c.cache) >= limit {
		result := make([]Coin, limit)
		copy(result, c.cache[:limit])
		c.cacheMu.RUnlock()
		return result, nil
	}
	c.cacheMu.RUnlock()

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(maxMarketsPerPage))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	var coins []Coin
	if err := c.get(ctx, "coins/markets", params, &coins); err != nil {
		return nil, err
	}

	// Update cache
	c.cacheMu.Lock()
	c.cache = coins
	c.cacheTime = time.Now()
	c.cacheMu.Unlock()

	if limit > len(coins) {
		limit = len(coins)
	}
	result := make([]Coin, limit)
	copy(result, coins[:limit])
	return result, nil
}

// Search finds coins by name or symbol. Provider failures yield no results.
func (c *Client) Search(ctx context.Context, query string) []SearchResult {
	params := url.Values{}
	params.Set("query", query)

	var resp struct {
		Coins []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			APISymbol     string `json:"api_symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
			Thumb         string `json:"thumb"`
			Large         string `json:"large"`
		} `json:"coins"`
	}
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil
	}

	results := make([]SearchResult, 0, min(len(resp.Coins), maxSearchResults))
	for i, coin := range resp.Coins {
		if i == maxSearchResults {
			break
		}
		symbol := coin.Symbol
		if symbol == "" {
			symbol = coin.APISymbol
		}
		image := coin.Thumb
		if image == "" {
			image = coin.Large
		}
		results = append(results, SearchResult{
			ID:            coin.ID,
			Name:          coin.Name,
			Symbol:        strings.ToUpper(symbol),
			MarketCapRank: coin.MarketCapRank,
			Image:         image,
		})
	}
	return results
}

// CoinWithHistory fetches current data and price history concurrently
func (c *Client) CoinWithHistory(ctx context.Context, id string, days int) (*Coin, []PricePoint, error) {
	return fetchBoth(ctx, c, id, days)
}

// Source is the subset of provider calls needed to build a coin with history
type Source interface {
	Coin(ctx context.Context, id string) (*Coin, error)
	PriceHistory(ctx context.Context, id string, days int) ([]PricePoint, error)
}

func fetchBoth(ctx context.Context, src Source, id string, days int) (*Coin, []PricePoint, error) {
	var (
		coin    *Coin
		history []PricePoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coin, err = src.Coin(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = src.PriceHistory(gctx, id, days)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return coin, history, nil
}
