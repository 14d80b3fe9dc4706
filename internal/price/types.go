package price

import (
	"errors"
	"time"
)

// Provider failures. Callers may treat all of them as "provider unavailable".
var (
	ErrNotFound    = errors.New("coin not found")
	ErrRateLimited = errors.New("rate limited by market data provider")
	ErrUnavailable = errors.New("market data provider unavailable")
)

// Coin is the current market snapshot of a cryptocurrency
type Coin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image,omitempty"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank,omitempty"`
	TotalVolume              float64  `json:"total_volume,omitempty"`
	High24h                  float64  `json:"high_24h,omitempty"`
	Low24h                   float64  `json:"low_24h,omitempty"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// PricePoint is one sample of a price history series
type PricePoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Price       float64   `json:"price"`
	MarketCap   *float64  `json:"market_cap,omitempty"`
	TotalVolume *float64  `json:"total_volume,omitempty"`
}

// SearchResult is a coin returned by search
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank,omitempty"`
	Image         string `json:"image,omitempty"`
}
