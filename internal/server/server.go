package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edibez/cryptodash/internal/ai"
	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/price"
	"github.com/edibez/cryptodash/internal/ratelimit"
	"github.com/edibez/cryptodash/internal/watchlist"
	"github.com/edibez/cryptodash/pkg/types"
)

// Market serves single-coin data, usually through the Redis cache
type Market interface {
	Coin(ctx context.Context, id string) (*price.Coin, error)
	CoinWithHistory(ctx context.Context, id string, days int) (*price.Coin, []price.PricePoint, error)
}

// Catalog serves rankings and search straight from the provider
type Catalog interface {
	TopCoins(ctx context.Context, limit int) ([]price.Coin, error)
	Search(ctx context.Context, query string) []price.SearchResult
}

// Options wires the server dependencies. Limiter and Stream are optional.
type Options struct {
	Pipeline  *ai.Pipeline
	Market    Market
	Catalog   Catalog
	Watchlist *watchlist.Store
	Limiter   *ratelimit.Limiter
	Stream    http.Handler
	Origins   []string
	Logger    logger.Logger
}

// Server is the dashboard HTTP API
type Server struct {
	pipeline  *ai.Pipeline
	market    Market
	catalog   Catalog
	watchlist *watchlist.Store
	limiter   *ratelimit.Limiter
	logger    logger.Logger
	router    *gin.Engine
}

// New builds the router
func New(opts Options) *Server {
	s := &Server{
		pipeline:  opts.Pipeline,
		market:    opts.Market,
		catalog:   opts.Catalog,
		watchlist: opts.Watchlist,
		limiter:   opts.Limiter,
		logger:    opts.Logger.With(map[string]interface{}{"component": "http"}),
	}

	r := gin.New()
	r.Use(s.recovery(), requestID(), s.observe())
	if len(opts.Origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.Origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Public endpoints
	r.GET("/health", handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	if s.limiter != nil {
		v1.Use(s.rateLimit())
	}
	{
		qa := v1.Group("/qa")
		qa.POST("/ask", s.handleAsk)
		qa.GET("/samples", handleSamples)
		qa.GET("/health", handleQAHealth)

		crypto := v1.Group("/crypto")
		crypto.GET("/top/:limit", s.handleTopCoins)
		crypto.GET("/search", s.handleSearch)
		crypto.GET("/:id", s.handleCoin)
		crypto.GET("/:id/price-trend", s.handlePriceTrend)

		wl := v1.Group("/watchlist")
		wl.GET("", s.handleWatchlist)
		wl.POST("/add", s.handleWatchlistAdd)
		wl.DELETE("/remove/:id", s.handleWatchlistRemove)

		v1.GET("/usage", s.handleUsage)
		if opts.Stream != nil {
			v1.GET("/stream", gin.WrapH(opts.Stream))
		}
	}

	s.router = r
	return s
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "crypto-dashboard-api", "ts": time.Now().Unix()})
}

func (s *Server) handleUsage(c *gin.Context) {
	if s.limiter == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "usage tracking is disabled", Code: "usage_disabled"})
		return
	}

	client := c.ClientIP()
	n, err := s.limiter.GetUsage(c.Request.Context(), client)
	if err != nil {
		s.logger.Error("usage lookup failed", map[string]interface{}{"client": client, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to get usage stats", Code: "internal"})
		return
	}
	c.JSON(http.StatusOK, types.UsageResponse{Client: client, Requests: n})
}
