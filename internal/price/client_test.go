package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bitcoinDetail = `{
	"id": "bitcoin",
	"symbol": "btc",
	"name": "Bitcoin",
	"image": {"large": "https://example.com/btc.png"},
	"market_data": {
		"current_price": {"usd": 64123.45},
		"market_cap": {"usd": 1250000000000},
		"market_cap_rank": 1,
		"total_volume": {"usd": 30000000000},
		"high_24h": {"usd": 65000},
		"low_24h": {"usd": 63000},
		"price_change_percentage_24h": 2.5
	}
}`

func newTestServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second)
}

func TestClient_Coin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-cg-demo-api-key"))
		assert.Equal(t, "true", r.URL.Query().Get("market_data"))
		w.Write([]byte(bitcoinDetail))
	})
	c := newTestServer(t, mux)

	coin, err := c.Coin(context.Background(), "bitcoin")
	require.NoError(t, err)
	require.NotNil(t, coin)

	assert.Equal(t, "Bitcoin", coin.Name)
	assert.Equal(t, "btc", coin.Symbol)
	assert.Equal(t, 64123.45, coin.CurrentPrice)
	assert.Equal(t, 1.25e12, coin.MarketCap)
	assert.Equal(t, 1, coin.MarketCapRank)
	assert.Equal(t, "https://example.com/btc.png", coin.Image)
	require.NotNil(t, coin.PriceChangePercentage24h)
	assert.Equal(t, 2.5, *coin.PriceChangePercentage24h)
}

func TestClient_StatusMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/coins/missing/market_chart", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/coins/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/coins/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/coins/garbled", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})
	c := newTestServer(t, mux)
	ctx := context.Background()

	coin, err := c.Coin(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, coin)

	points, err := c.PriceHistory(ctx, "missing", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, points)

	_, err = c.Coin(ctx, "limited")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = c.Coin(ctx, "broken")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.Coin(ctx, "garbled")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, "", time.Second)

	_, err := c.Coin(context.Background(), "bitcoin")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_PriceHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/ethereum/market_chart", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		// deliberately out of order
		w.Write([]byte(`{
			"prices": [[1704153600000, 2400.5], [1704067200000, 2300.0]],
			"market_caps": [[1704067200000, 276000000000]],
			"total_volumes": []
		}`))
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hourly", r.URL.Query().Get("interval"))
		w.Write([]byte(`{"prices": []}`))
	})
	c := newTestServer(t, mux)

	points, err := c.PriceHistory(context.Background(), "ethereum", 30)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
	assert.Equal(t, 2300.0, points[0].Price)
	assert.Equal(t, 2400.5, points[1].Price)
	require.NotNil(t, points[0].MarketCap)
	assert.Equal(t, 276e9, *points[0].MarketCap)
	assert.Nil(t, points[1].MarketCap)
	assert.Nil(t, points[0].TotalVolume)

	points, err = c.PriceHistory(context.Background(), "bitcoin", 1)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestClient_TopCoinsCached(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/markets", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "market_cap_desc", r.URL.Query().Get("order"))
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000,"market_cap":1.25e12,"market_cap_rank":1,"price_change_percentage_24h":1.2},
			{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3200,"market_cap":3.8e11,"market_cap_rank":2,"price_change_percentage_24h":null},
			{"id":"tether","symbol":"usdt","name":"Tether","current_price":1,"market_cap":1e11,"market_cap_rank":3}
		]`))
	})
	c := newTestServer(t, mux)
	ctx := context.Background()

	top, err := c.TopCoins(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bitcoin", top[0].ID)
	assert.Nil(t, top[1].PriceChangePercentage24h)

	top, err = c.TopCoins(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	top, err = c.TopCoins(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, top, 3)
}

func TestClient_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "doge":
			w.Write([]byte(`{"coins":[
				{"id":"dogecoin","name":"Dogecoin","symbol":"doge","market_cap_rank":9,"thumb":"t.png"},
				{"id":"baby-doge-coin","name":"Baby Doge Coin","api_symbol":"babydoge","large":"l.png"}
			]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	c := newTestServer(t, mux)

	results := c.Search(context.Background(), "doge")
	require.Len(t, results, 2)
	assert.Equal(t, SearchResult{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", MarketCapRank: 9, Image: "t.png"}, results[0])
	assert.Equal(t, "BABYDOGE", results[1].Symbol)
	assert.Equal(t, "l.png", results[1].Image)

	assert.Empty(t, c.Search(context.Background(), "fail"))
}

func TestClient_CoinWithHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bitcoinDetail))
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices": [[1704067200000, 42000], [1704153600000, 43000]]}`))
	})
	c := newTestServer(t, mux)

	coin, history, err := c.CoinWithHistory(context.Background(), "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", coin.Name)
	assert.Len(t, history, 2)
}

func TestOffline(t *testing.T) {
	_, err := Offline{}.Coin(context.Background(), "bitcoin")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Offline{}.PriceHistory(context.Background(), "bitcoin", 7)
	assert.ErrorIs(t, err, ErrUnavailable)
}
