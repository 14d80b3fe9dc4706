package types

import (
	"github.com/edibez/cryptodash/internal/ai"
	"github.com/edibez/cryptodash/internal/price"
	"github.com/edibez/cryptodash/internal/watchlist"
)

// AskRequest for natural language questions
type AskRequest struct {
	Query string `json:"query" binding:"required,max=500"`
}

// AskResponse is the pipeline result echoed with the original query
type AskResponse struct {
	ai.Result
	Query string `json:"query"`
}

// SamplesResponse lists example questions per category
type SamplesResponse struct {
	Samples map[string][]string `json:"samples"`
}

// TopCoinsResponse for market cap rankings
type TopCoinsResponse struct {
	Coins      []price.Coin `json:"coins"`
	TotalCount int          `json:"total_count"`
}

// SearchResponse for coin search
type SearchResponse struct {
	Results    []price.SearchResult `json:"results"`
	TotalCount int                  `json:"total_count"`
}

// PriceTrendResponse is a coin's price series
type PriceTrendResponse struct {
	CryptoID     string             `json:"crypto_id"`
	CryptoName   string             `json:"crypto_name"`
	CryptoSymbol string             `json:"crypto_symbol"`
	DataPoints   []price.PricePoint `json:"data_points"`
	PeriodDays   int                `json:"period_days"`
}

// WatchlistResponse is one page of the watchlist
type WatchlistResponse struct {
	Watchlist   []watchlist.Item `json:"watchlist"`
	TotalCount  int              `json:"total_count"`
	MaxCapacity int              `json:"max_capacity"`
}

// WatchlistAddRequest adds a coin by provider id
type WatchlistAddRequest struct {
	CryptoID         string `json:"crypto_id" binding:"required"`
	FetchHistoryDays int    `json:"fetch_history_days" binding:"omitempty,min=1,max=365"`
}

// WatchlistOperationResponse reports the outcome of an add or remove
type WatchlistOperationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	CryptoID       string `json:"crypto_id"`
	WatchlistCount int    `json:"watchlist_count"`
}

// UsageResponse reports lifetime request counts for a client
type UsageResponse struct {
	Client   string `json:"client"`
	Requests int64  `json:"requests"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
