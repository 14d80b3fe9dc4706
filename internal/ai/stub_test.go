package ai

import (
	"context"
	"sync"
	"time"

	"github.com/edibez/cryptodash/internal/price"
)

// stubMarket serves canned market data keyed by provider id
type stubMarket struct {
	mu       sync.Mutex
	coins    map[string]*price.Coin
	history  map[string][]float64
	err      error
	panicMsg string
	calls    []string
	days     []int
}

func (s *stubMarket) Coin(_ context.Context, id string) (*price.Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "coin:"+id)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.coins[id], nil
}

func (s *stubMarket) PriceHistory(_ context.Context, id string, days int) ([]price.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "history:"+id)
	s.days = append(s.days, days)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	var points []price.PricePoint
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range s.history[id] {
		points = append(points, price.PricePoint{Timestamp: start.AddDate(0, 0, i), Price: p})
	}
	return points, nil
}

// fixedFallback returns deterministic synthetic values
type fixedFallback struct {
	price           float64
	marketCap       float64
	change          float64
	comparisonPrice float64
	limits          []float64
}

func (f *fixedFallback) Price(string) float64     { return f.price }
func (f *fixedFallback) MarketCap(string) float64 { return f.marketCap }
func (f *fixedFallback) Change(limit float64) float64 {
	f.limits = append(f.limits, limit)
	return f.change
}
func (f *fixedFallback) ComparisonPrice(string) float64 { return f.comparisonPrice }

func pct(v float64) *float64 { return &v }
