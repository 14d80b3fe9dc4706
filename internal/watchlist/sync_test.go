package watchlist

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
	"github.com/edibez/cryptodash/internal/price"
)

type stubSource struct {
	coins   map[string]*price.Coin
	history map[string][]price.PricePoint
	errs    map[string]error
}

func (s *stubSource) CoinWithHistory(_ context.Context, id string, _ int) (*price.Coin, []price.PricePoint, error) {
	if err := s.errs[id]; err != nil {
		return nil, nil, err
	}
	return s.coins[id], s.history[id], nil
}

func TestSyncer_SyncAll(t *testing.T) {
	store := newTestStore(t, 10)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, c := range []price.Coin{testCoin("bitcoin", 1, 1e12), testCoin("ethereum", 2, 4e11), testCoin("cardano", 9, 1e10)} {
		_, err := store.Add(ctx, c)
		require.NoError(t, err)
	}

	stale := now.Add(-100 * 24 * time.Hour)
	_, err := store.SaveHistory(ctx, "cardano", []price.PricePoint{{Timestamp: stale, Price: 0.4}})
	require.NoError(t, err)

	fresh := testCoin("bitcoin", 1, 1.3e12)
	fresh.CurrentPrice = 67000
	src := &stubSource{
		coins: map[string]*price.Coin{"bitcoin": &fresh},
		history: map[string][]price.PricePoint{"bitcoin": {
			{Timestamp: now.Add(-48 * time.Hour), Price: 65000},
			{Timestamp: now.Add(-24 * time.Hour), Price: 66000},
		}},
		errs: map[string]error{"ethereum": price.ErrRateLimited},
	}

	syncer := NewSyncer(store, src, time.Hour, 90*24*time.Hour, logger.NewTestLogger(t))
	syncer.now = func() time.Time { return now }

	res, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Refreshed)
	assert.Equal(t, 2, res.Failed) // ethereum errored, cardano absent
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, int64(1), res.Pruned)

	btc, err := store.Get(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 67000.0, btc.CurrentPrice)

	history, err := store.History(ctx, "bitcoin", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	eth, err := store.Get(ctx, "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 10.0, eth.CurrentPrice)
}

type failingSource struct{ called chan struct{} }

func (f *failingSource) CoinWithHistory(context.Context, string, int) (*price.Coin, []price.PricePoint, error) {
	select {
	case f.called <- struct{}{}:
	default:
	}
	return nil, nil, errors.New("offline")
}

func TestSyncer_StartRunsImmediately(t *testing.T) {
	store := newTestStore(t, 10)
	_, err := store.Add(context.Background(), testCoin("bitcoin", 1, 1e12))
	require.NoError(t, err)

	src := &failingSource{called: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewSyncer(store, src, time.Hour, 0, logger.NewNoOpLogger()).Start(ctx)

	select {
	case <-src.called:
	case <-time.After(2 * time.Second):
		t.Fatal("initial sync did not run")
	}
}

func TestSyncer_RunStopsWithContext(t *testing.T) {
	store := newTestStore(t, 10)
	src := &failingSource{called: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewSyncer(store, src, time.Hour, 0, logger.NewNoOpLogger()).Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// quoteSource serves a single live quote behind a price.Cache
type quoteSource struct {
	coin  price.Coin
	calls int
}

func (q *quoteSource) Coin(context.Context, string) (*price.Coin, error) {
	q.calls++
	c := q.coin
	return &c, nil
}

func (q *quoteSource) PriceHistory(context.Context, string, int) ([]price.PricePoint, error) {
	return nil, nil
}

func TestSyncer_BypassesCachedQuote(t *testing.T) {
	store := newTestStore(t, 10)
	ctx := context.Background()
	_, err := store.Add(ctx, testCoin("bitcoin", 1, 1e12))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	src := &quoteSource{coin: testCoin("bitcoin", 1, 1e12)}
	src.coin.CurrentPrice = 60000
	cache := price.NewCache(src, rdb, time.Hour, logger.NewNoOpLogger())

	// warm the cache with the old quote
	_, err = cache.Coin(ctx, "bitcoin")
	require.NoError(t, err)
	src.coin.CurrentPrice = 70000

	res, err := NewSyncer(store, cache, time.Hour, 0, logger.NewNoOpLogger()).SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Refreshed)
	assert.Equal(t, 2, src.calls)

	btc, err := store.Get(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 70000.0, btc.CurrentPrice)
}
