package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edibez/cryptodash/internal/price"
	"github.com/edibez/cryptodash/pkg/types"
)

const (
	maxTopCoins        = 100
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	defaultTrendDays   = 7
	maxTrendDays       = 365
)

// queryInt parses an optional integer query parameter within [lo, hi]
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msg, Code: "invalid_request"})
}

// providerError answers a failed provider call. Unknown coins are 404.
func (s *Server) providerError(c *gin.Context, err error, what string) {
	if errors.Is(err, price.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "cryptocurrency not found", Code: "not_found", Details: what})
		return
	}

	status, code := http.StatusBadGateway, "provider_unavailable"
	if errors.Is(err, price.ErrRateLimited) {
		status, code = http.StatusServiceUnavailable, "provider_rate_limited"
	}
	s.logger.Error("provider request failed", map[string]interface{}{
		"what":       what,
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
	c.JSON(status, types.ErrorResponse{Error: "Error fetching " + what, Code: code})
}

func (s *Server) handleTopCoins(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil || limit < 1 || limit > maxTopCoins {
		badRequest(c, "limit must be between 1 and 100")
		return
	}

	coins, err := s.catalog.TopCoins(c.Request.Context(), limit)
	if err != nil {
		s.providerError(c, err, "cryptocurrency data")
		return
	}
	c.JSON(http.StatusOK, types.TopCoinsResponse{Coins: coins, TotalCount: len(coins)})
}

func (s *Server) handleSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		badRequest(c, "q must be at least 2 characters")
		return
	}
	limit, ok := queryInt(c, "limit", defaultSearchLimit, 1, maxSearchLimit)
	if !ok {
		badRequest(c, "limit must be between 1 and 50")
		return
	}

	results := s.catalog.Search(c.Request.Context(), q)
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []price.SearchResult{}
	}
	c.JSON(http.StatusOK, types.SearchResponse{Results: results, TotalCount: len(results)})
}

func (s *Server) handleCoin(c *gin.Context) {
	id := c.Param("id")

	coin, err := s.market.Coin(c.Request.Context(), id)
	if err != nil {
		s.providerError(c, err, "cryptocurrency "+id)
		return
	}
	if coin == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "cryptocurrency not found", Code: "not_found", Details: id})
		return
	}
	c.JSON(http.StatusOK, coin)
}

// handlePriceTrend serves stored history for watchlisted coins and falls back to the provider
func (s *Server) handlePriceTrend(c *gin.Context) {
	id := c.Param("id")
	days, ok := queryInt(c, "days", defaultTrendDays, 1, maxTrendDays)
	if !ok {
		badRequest(c, "days must be between 1 and 365")
		return
	}
	ctx := c.Request.Context()

	item, err := s.watchlist.Get(ctx, id)
	watchlisted := err == nil
	if watchlisted {
		from := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		points, err := s.watchlist.History(ctx, id, from, time.Time{}, 0)
		if err != nil {
			s.logger.Warn("stored history unavailable", map[string]interface{}{"coin": id, "error": err.Error()})
		}
		if len(points) > 0 {
			c.JSON(http.StatusOK, types.PriceTrendResponse{
				CryptoID:     id,
				CryptoName:   item.Name,
				CryptoSymbol: item.Symbol,
				DataPoints:   points,
				PeriodDays:   days,
			})
			return
		}
	}

	coin, points, err := s.market.CoinWithHistory(ctx, id, days)
	if err != nil {
		s.providerError(c, err, "price trend data")
		return
	}
	if coin == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "cryptocurrency not found", Code: "not_found", Details: id})
		return
	}
	if watchlisted {
		if _, err := s.watchlist.SaveHistory(ctx, id, points); err != nil {
			s.logger.Warn("saving history failed", map[string]interface{}{"coin": id, "error": err.Error()})
		}
	}
	if points == nil {
		points = []price.PricePoint{}
	}

	c.JSON(http.StatusOK, types.PriceTrendResponse{
		CryptoID:     id,
		CryptoName:   coin.Name,
		CryptoSymbol: coin.Symbol,
		DataPoints:   points,
		PeriodDays:   days,
	})
}
