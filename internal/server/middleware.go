package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edibez/cryptodash/internal/metrics"
	"github.com/edibez/cryptodash/pkg/types"
)

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// observe records request latency and writes the access log
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())

		s.logger.Info("request", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"request_id": c.GetString("request_id"),
			"client":     c.ClientIP(),
		})
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec interface{}) {
		s.logger.Error("panic recovered", map[string]interface{}{
			"path":       c.Request.URL.Path,
			"panic":      rec,
			"request_id": c.GetString("request_id"),
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error", Code: "internal"})
	})
}

// rateLimit enforces the per-client window. Redis failures let the request through.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		ctx := c.Request.Context()

		allowed, remaining, err := s.limiter.Allow(ctx, key)
		if err != nil {
			s.logger.Warn("rate limit check failed", map[string]interface{}{"client": key, "error": err.Error()})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"limit":       s.limiter.Limit(),
				"remaining":   remaining,
				"retry_after": int(s.limiter.Window().Seconds()),
			})
			return
		}

		if _, err := s.limiter.IncrementUsage(ctx, key); err != nil {
			s.logger.Debug("usage increment failed", map[string]interface{}{"client": key, "error": err.Error()})
		}
		c.Next()
	}
}
