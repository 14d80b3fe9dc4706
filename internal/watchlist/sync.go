package watchlist

import (
	"context"
	"fmt"
	"time"

	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/price"
)

const (
	// DefaultSyncInterval between watchlist refreshes
	DefaultSyncInterval = 15 * time.Minute
	// DefaultRetention of stored price history
	DefaultRetention = 90 * 24 * time.Hour

	syncHistoryDays = 7
)

// Source provides current data and recent history for a coin
type Source interface {
	CoinWithHistory(ctx context.Context, id string, days int) (*price.Coin, []price.PricePoint, error)
}

// invalidator is implemented by caching sources such as price.Cache
type invalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// SyncResult summarizes one sync pass
type SyncResult struct {
	Refreshed int
	Failed    int
	Points    int
	Pruned    int64
}

// Syncer keeps watchlisted coins and their history fresh
type Syncer struct {
	store     *Store
	src       Source
	interval  time.Duration
	retention time.Duration
	logger    logger.Logger
	now       func() time.Time
}

// NewSyncer creates a new watchlist syncer
func NewSyncer(store *Store, src Source, interval, retention time.Duration, log logger.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Syncer{
		store:     store,
		src:       src,
		interval:  interval,
		retention: retention,
		logger:    log.With(map[string]interface{}{"component": "watchlist_sync"}),
		now:       time.Now,
	}
}

// SyncAll refreshes every watchlisted coin and prunes expired history.
// A failing coin is logged and skipped.
func (s *Syncer) SyncAll(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	items, err := s.store.List(ctx, 0, s.store.Capacity())
	if err != nil {
		return res, fmt.Errorf("list watchlist: %w", err)
	}

	for _, item := range items {
		n, err := s.syncCoin(ctx, item.ID)
		if err != nil {
			res.Failed++
			s.logger.Warn("watchlist coin sync failed", map[string]interface{}{
				"coin":  item.ID,
				"error": err.Error(),
			})
			continue
		}
		res.Refreshed++
		res.Points += n
	}

	pruned, err := s.store.CleanupHistory(ctx, s.now().Add(-s.retention))
	if err != nil {
		return res, err
	}
	res.Pruned = pruned

	s.logger.Info("watchlist sync complete", map[string]interface{}{
		"refreshed": res.Refreshed,
		"failed":    res.Failed,
		"points":    res.Points,
		"pruned":    res.Pruned,
	})
	return res, nil
}

func (s *Syncer) syncCoin(ctx context.Context, id string) (int, error) {
	if inv, ok := s.src.(invalidator); ok {
		if err := inv.Invalidate(ctx, id); err != nil {
			s.logger.Debug("cache invalidation failed", map[string]interface{}{"coin": id, "error": err.Error()})
		}
	}

	coin, history, err := s.src.CoinWithHistory(ctx, id, syncHistoryDays)
	if err != nil {
		return 0, err
	}
	if coin == nil {
		return 0, fmt.Errorf("%s: %w", id, price.ErrNotFound)
	}
	// rows are keyed by the watchlisted id
	coin.ID = id
	if err := s.store.Refresh(ctx, *coin); err != nil {
		return 0, err
	}
	return s.store.SaveHistory(ctx, id, history)
}

// Start runs the sync loop in the background until ctx is done
func (s *Syncer) Start(ctx context.Context) {
	go s.Run(ctx)
}

// Run syncs immediately and then on every interval. It returns when ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	if _, err := s.SyncAll(ctx); err != nil {
		s.logger.Error("initial watchlist sync failed", map[string]interface{}{"error": err.Error()})
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SyncAll(ctx); err != nil {
				s.logger.Error("watchlist sync failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
