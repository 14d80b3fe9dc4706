package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/metrics"
)

const (
	emptyQueryAnswer = "Please provide a question about cryptocurrencies."
	errorAnswer      = "I'm sorry, I encountered an error while processing your query. Please try again."
)

// Result is the structured answer to a query
type Result struct {
	Answer     string   `json:"answer"`
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
}

// Pipeline classifies a query, extracts its entities and dispatches to the responder
type Pipeline struct {
	classifier *Classifier
	extractor  *Extractor
	responder  *Responder
	logger     logger.Logger
}

// NewPipeline creates a pipeline over the default lexicon
func NewPipeline(responder *Responder, log logger.Logger) *Pipeline {
	return &Pipeline{
		classifier: defaultClassifier,
		extractor:  defaultExtractor,
		responder:  responder,
		logger:     log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// ProcessQuery answers query. It never fails: empty input short-circuits and
// a panicking handler is replaced by a generic apology.
func (p *Pipeline) ProcessQuery(ctx context.Context, query string) Result {
	if strings.TrimSpace(query) == "" {
		metrics.QAQueries.WithLabelValues(string(IntentEmptyQuery)).Inc()
		return Result{
			Answer:     emptyQueryAnswer,
			Intent:     IntentEmptyQuery,
			Confidence: 0,
		}
	}

	intent := p.classifier.Detect(query)
	confidence := p.classifier.Confidence(query, intent)
	entities := p.extractor.Extract(query)

	p.logger.Debug("query classified", map[string]interface{}{
		"intent":     intent,
		"confidence": confidence,
		"coin":       entities.Coin,
		"coins":      entities.Coins,
		"timeframe":  entities.Timeframe,
	})
	metrics.QAQueries.WithLabelValues(string(intent)).Inc()

	answer, err := p.dispatch(ctx, intent, entities)
	if err != nil {
		p.logger.Error("handler failed", map[string]interface{}{
			"intent": intent,
			"error":  err.Error(),
		})
		answer = errorAnswer
	}

	return Result{
		Answer:     answer,
		Intent:     intent,
		Confidence: confidence,
		Entities:   entities,
	}
}

func (p *Pipeline) dispatch(ctx context.Context, intent Intent, e Entities) (answer string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s handler: %v", intent, rec)
		}
	}()

	r := p.responder
	switch intent {
	case IntentPrice:
		answer = r.Price(ctx, e.Coin)
	case IntentTrend:
		answer = r.Trend(ctx, e.Coin, e.Timeframe)
	case IntentMarketCap:
		answer = r.MarketCap(ctx, e.Coin)
	case IntentComparison:
		answer = r.Comparison(ctx, e.Coins, e.Timeframe)
	case IntentGenericInfo:
		answer = r.GenericInfo(e.Coin)
	default:
		answer = r.Unknown()
	}
	return answer, nil
}
