package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edibez/cryptodash/internal/ai"
	"github.com/edibez/cryptodash/pkg/types"
)

func (s *Server) handleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "query is required and must be at most 500 characters",
			Code:    "invalid_request",
			Details: err.Error(),
		})
		return
	}

	result := s.pipeline.ProcessQuery(c.Request.Context(), req.Query)
	s.logger.Info("query answered", map[string]interface{}{
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"request_id": c.GetString("request_id"),
	})

	c.JSON(http.StatusOK, types.AskResponse{Result: result, Query: req.Query})
}

func handleSamples(c *gin.Context) {
	c.JSON(http.StatusOK, types.SamplesResponse{Samples: ai.GetSampleQueries()})
}

func handleQAHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "qa-assistant",
		"message": "Q/A Assistant is ready to process queries",
	})
}
