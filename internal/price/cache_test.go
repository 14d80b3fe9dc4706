package price

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edibez/cryptodash/internal/logger"
)

type countingSource struct {
	coins       map[string]*Coin
	history     []PricePoint
	err         error
	coinHits    int
	historyHits int
}

func (s *countingSource) Coin(_ context.Context, id string) (*Coin, error) {
	s.coinHits++
	if s.err != nil {
		return nil, s.err
	}
	return s.coins[id], nil
}

func (s *countingSource) PriceHistory(_ context.Context, _ string, _ int) ([]PricePoint, error) {
	s.historyHits++
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func setupCache(t *testing.T, src Source) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(src, client, time.Minute, logger.NewTestLogger(t)), mr
}

func TestCache_CoinReadThrough(t *testing.T) {
	src := &countingSource{coins: map[string]*Coin{
		"bitcoin": {ID: "bitcoin", Name: "Bitcoin", CurrentPrice: 64000},
	}}
	cache, mr := setupCache(t, src)
	ctx := context.Background()

	coin, err := cache.Coin(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 64000.0, coin.CurrentPrice)
	assert.True(t, mr.Exists("cryptodash:coin:bitcoin"))

	coin, err = cache.Coin(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", coin.Name)
	assert.Equal(t, 1, src.coinHits)

	mr.FastForward(2 * time.Minute)
	_, err = cache.Coin(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 2, src.coinHits)
}

func TestCache_MissingCoinNotCached(t *testing.T) {
	src := &countingSource{}
	cache, mr := setupCache(t, src)

	coin, err := cache.Coin(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, coin)
	assert.False(t, mr.Exists("cryptodash:coin:nope"))
}

func TestCache_SourceErrorPropagates(t *testing.T) {
	src := &countingSource{err: ErrRateLimited}
	cache, _ := setupCache(t, src)

	_, err := cache.Coin(context.Background(), "bitcoin")
	assert.True(t, errors.Is(err, ErrRateLimited))

	_, err = cache.PriceHistory(context.Background(), "bitcoin", 7)
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestCache_PriceHistory(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &countingSource{history: []PricePoint{
		{Timestamp: ts, Price: 100},
		{Timestamp: ts.AddDate(0, 0, 1), Price: 110},
	}}
	cache, mr := setupCache(t, src)
	ctx := context.Background()

	points, err := cache.PriceHistory(ctx, "bitcoin", 7)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, mr.Exists("cryptodash:history:bitcoin:7"))

	points, err = cache.PriceHistory(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, 110.0, points[1].Price)
	assert.True(t, points[0].Timestamp.Equal(ts))
	assert.Equal(t, 1, src.historyHits)

	_, err = cache.PriceHistory(ctx, "bitcoin", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, src.historyHits)
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	src := &countingSource{coins: map[string]*Coin{"bitcoin": {ID: "bitcoin"}}}
	cache, mr := setupCache(t, src)
	mr.Close()

	coin, err := cache.Coin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", coin.ID)
}

func TestCache_CorruptEntry(t *testing.T) {
	src := &countingSource{coins: map[string]*Coin{"bitcoin": {ID: "bitcoin", Name: "Bitcoin"}}}
	cache, mr := setupCache(t, src)
	require.NoError(t, mr.Set("cryptodash:coin:bitcoin", "{oops"))

	coin, err := cache.Coin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", coin.Name)
	assert.Equal(t, 1, src.coinHits)
}

func TestCache_Invalidate(t *testing.T) {
	src := &countingSource{coins: map[string]*Coin{"bitcoin": {ID: "bitcoin"}}}
	cache, mr := setupCache(t, src)
	ctx := context.Background()

	_, err := cache.Coin(ctx, "bitcoin")
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, "bitcoin"))
	assert.False(t, mr.Exists("cryptodash:coin:bitcoin"))
}
