package ai

import (
	"math/rand"
	"sync"
	"time"
)

// Fallback supplies synthetic market values when the provider is unavailable
type Fallback interface {
	// Price returns an approximate USD price for coin
	Price(coin string) float64
	// MarketCap returns an approximate USD market cap for coin
	MarketCap(coin string) float64
	// Change returns a percentage change within [-limit, limit]
	Change(limit float64) float64
	// ComparisonPrice returns a price for a synthetic comparison row
	ComparisonPrice(coin string) float64
}

var mockPrices = map[string]float64{
	"bitcoin":  64000,
	"ethereum": 3200,
	"dogecoin": 0.08,
	"solana":   150,
}

var mockMarketCaps = map[string]float64{
	"bitcoin":  1_250_000_000_000,
	"ethereum": 380_000_000_000,
	"dogecoin": 12_000_000_000,
	"solana":   65_000_000_000,
}

// RandomFallback serves representative values for well-known coins and
// bounded random values for everything else
type RandomFallback struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomFallback creates a fallback seeded with seed, or the clock when seed is 0
func NewRandomFallback(seed int64) *RandomFallback {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomFallback{rnd: rand.New(rand.NewSource(seed))}
}

func (f *RandomFallback) uniform(lo, hi float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo + f.rnd.Float64()*(hi-lo)
}

func (f *RandomFallback) intn(lo, hi int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo + f.rnd.Int63n(hi-lo+1)
}

// Price returns the table price or a whole number in [1, 1000]
func (f *RandomFallback) Price(coin string) float64 {
	if p, ok := mockPrices[coin]; ok {
		return p
	}
	return float64(f.intn(1, 1000))
}

// MarketCap returns the table value or a whole number in [1e6, 1e11]
func (f *RandomFallback) MarketCap(coin string) float64 {
	if mc, ok := mockMarketCaps[coin]; ok {
		return mc
	}
	return float64(f.intn(1_000_000, 100_000_000_000))
}

// Change samples uniformly from [-limit, limit]
func (f *RandomFallback) Change(limit float64) float64 {
	return f.uniform(-limit, limit)
}

// ComparisonPrice samples uniformly from [0.001, 50000]
func (f *RandomFallback) ComparisonPrice(string) float64 {
	return f.uniform(0.001, 50000)
}
