package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edibez/cryptodash/internal/watchlist"
	"github.com/edibez/cryptodash/pkg/types"
)

const defaultHistoryDays = 30

func (s *Server) handleWatchlist(c *gin.Context) {
	capacity := s.watchlist.Capacity()
	skip, ok := queryInt(c, "skip", 0, 0, 1<<20)
	if !ok {
		badRequest(c, "skip must be a non-negative integer")
		return
	}
	limit, ok := queryInt(c, "limit", capacity, 1, capacity)
	if !ok {
		badRequest(c, fmt.Sprintf("limit must be between 1 and %d", capacity))
		return
	}
	ctx := c.Request.Context()

	resp := types.WatchlistResponse{Watchlist: []watchlist.Item{}, MaxCapacity: capacity}
	items, err := s.watchlist.List(ctx, skip, limit)
	if err == nil {
		resp.TotalCount, err = s.watchlist.Count(ctx)
	}
	if err != nil {
		// an unreadable watchlist is shown as empty
		s.logger.Error("watchlist read failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Watchlist = items
	c.JSON(http.StatusOK, resp)
}

func (s *Server) watchlistResult(c *gin.Context, status int, id, msg string) {
	count, err := s.watchlist.Count(c.Request.Context())
	if err != nil {
		s.logger.Warn("watchlist count failed", map[string]interface{}{"error": err.Error()})
	}
	c.JSON(status, types.WatchlistOperationResponse{
		Success:        status == http.StatusOK,
		Message:        msg,
		CryptoID:       id,
		WatchlistCount: count,
	})
}

func (s *Server) handleWatchlistAdd(c *gin.Context) {
	var req types.WatchlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "crypto_id is required", Code: "invalid_request", Details: err.Error()})
		return
	}
	if req.FetchHistoryDays == 0 {
		req.FetchHistoryDays = defaultHistoryDays
	}
	ctx := c.Request.Context()
	capacity := s.watchlist.Capacity()

	count, err := s.watchlist.Count(ctx)
	if err != nil {
		s.logger.Error("watchlist count failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Error adding cryptocurrency to watchlist", Code: "internal"})
		return
	}
	if count >= capacity {
		s.watchlistResult(c, http.StatusConflict, req.CryptoID, fullMessage(capacity))
		return
	}
	if _, err := s.watchlist.Get(ctx, req.CryptoID); err == nil {
		s.watchlistResult(c, http.StatusConflict, req.CryptoID, "Cryptocurrency is already in your watchlist")
		return
	}

	coin, history, err := s.market.CoinWithHistory(ctx, req.CryptoID, req.FetchHistoryDays)
	if err != nil {
		s.providerError(c, err, "cryptocurrency "+req.CryptoID)
		return
	}
	if coin == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "cryptocurrency not found", Code: "not_found", Details: req.CryptoID})
		return
	}
	coin.ID = req.CryptoID

	item, err := s.watchlist.Add(ctx, *coin)
	switch {
	case errors.Is(err, watchlist.ErrFull):
		s.watchlistResult(c, http.StatusConflict, req.CryptoID, fullMessage(capacity))
		return
	case errors.Is(err, watchlist.ErrExists):
		s.watchlistResult(c, http.StatusConflict, req.CryptoID, "Cryptocurrency is already in your watchlist")
		return
	case err != nil:
		s.logger.Error("watchlist add failed", map[string]interface{}{"coin": req.CryptoID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Error adding cryptocurrency to watchlist", Code: "internal"})
		return
	}

	if _, err := s.watchlist.SaveHistory(ctx, req.CryptoID, history); err != nil {
		s.logger.Warn("saving history failed", map[string]interface{}{"coin": req.CryptoID, "error": err.Error()})
	}
	s.watchlistResult(c, http.StatusOK, req.CryptoID, fmt.Sprintf("Successfully added %s to your watchlist", item.Name))
}

func (s *Server) handleWatchlistRemove(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	item, err := s.watchlist.Get(ctx, id)
	if errors.Is(err, watchlist.ErrNotFound) {
		s.watchlistResult(c, http.StatusNotFound, id, "Cryptocurrency is not in your watchlist")
		return
	}
	if err == nil {
		err = s.watchlist.Remove(ctx, id)
	}
	if errors.Is(err, watchlist.ErrNotFound) {
		s.watchlistResult(c, http.StatusNotFound, id, "Cryptocurrency is not in your watchlist")
		return
	}
	if err != nil {
		s.logger.Error("watchlist remove failed", map[string]interface{}{"coin": id, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Error removing cryptocurrency from watchlist", Code: "internal"})
		return
	}

	s.watchlistResult(c, http.StatusOK, id, fmt.Sprintf("Successfully removed %s from your watchlist", item.Name))
}

func fullMessage(capacity int) string {
	return fmt.Sprintf("Watchlist is at maximum capacity (%d cryptocurrencies). Remove some cryptocurrencies to add new ones.", capacity)
}
