package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/edibez/cryptodash/internal/price"
)

// DefaultCapacity is the maximum number of watchlisted coins
const DefaultCapacity = 10

var (
	ErrFull     = errors.New("watchlist is at maximum capacity")
	ErrExists   = errors.New("cryptocurrency is already in the watchlist")
	ErrNotFound = errors.New("cryptocurrency is not in the watchlist")
)

const schema = `
	CREATE TABLE IF NOT EXISTS cryptocurrencies (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		image TEXT,
		current_price REAL NOT NULL DEFAULT 0,
		market_cap REAL NOT NULL DEFAULT 0,
		market_cap_rank INTEGER,
		total_volume REAL NOT NULL DEFAULT 0,
		high_24h REAL NOT NULL DEFAULT 0,
		low_24h REAL NOT NULL DEFAULT 0,
		price_change_percentage_24h REAL,
		is_watchlisted INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS price_history (
		id TEXT PRIMARY KEY,
		crypto_id TEXT NOT NULL,
		price REAL NOT NULL,
		market_cap REAL,
		total_volume REAL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_crypto_ts ON price_history(crypto_id, timestamp);
`

const itemColumns = `id, symbol, name, image, current_price, market_cap, market_cap_rank, total_volume,
	high_24h, low_24h, price_change_percentage_24h, is_watchlisted, created_at, updated_at`

// Item is a watchlisted coin as persisted
type Item struct {
	price.Coin
	Watchlisted bool      `json:"is_watchlisted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists the watchlist and its price history in SQLite
type Store struct {
	db       *sql.DB
	capacity int
}

// NewStore opens the database at dbPath and creates the tables
func NewStore(dbPath string, capacity int) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection, so :memory: databases are shared by every query
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return NewStoreWithDB(db, capacity), nil
}

// NewStoreWithDB wraps an already migrated database
func NewStoreWithDB(db *sql.DB, capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{db: db, capacity: capacity}
}

// Capacity returns the maximum number of watchlisted coins
func (s *Store) Capacity() int {
	return s.capacity
}

// Add watchlists coin, inserting or refreshing its row
func (s *Store) Add(ctx context.Context, coin price.Coin) (*Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM cryptocurrencies WHERE is_watchlisted = 1").Scan(&count); err != nil {
		return nil, fmt.Errorf("count watchlist: %w", err)
	}
	if count >= s.capacity {
		return nil, ErrFull
	}

	var watchlisted bool
	err = tx.QueryRowContext(ctx, "SELECT is_watchlisted FROM cryptocurrencies WHERE id = ?", coin.ID).Scan(&watchlisted)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("lookup %s: %w", coin.ID, err)
	case watchlisted:
		return nil, ErrExists
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cryptocurrencies (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			symbol = excluded.symbol,
			name = excluded.name,
			image = excluded.image,
			current_price = excluded.current_price,
			market_cap = excluded.market_cap,
			market_cap_rank = excluded.market_cap_rank,
			total_volume = excluded.total_volume,
			high_24h = excluded.high_24h,
			low_24h = excluded.low_24h,
			price_change_percentage_24h = excluded.price_change_percentage_24h,
			is_watchlisted = 1,
			updated_at = excluded.updated_at`,
		coin.ID, coin.Symbol, coin.Name, nullString(coin.Image),
		coin.CurrentPrice, coin.MarketCap, nullRank(coin.MarketCapRank), coin.TotalVolume,
		coin.High24h, coin.Low24h, coin.PriceChangePercentage24h,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", coin.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.Get(ctx, coin.ID)
}

// Refresh overwrites the market data of an existing coin
func (s *Store) Refresh(ctx context.Context, coin price.Coin) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cryptocurrencies SET
			symbol = ?, name = ?, image = ?, current_price = ?, market_cap = ?, market_cap_rank = ?,
			total_volume = ?, high_24h = ?, low_24h = ?, price_change_percentage_24h = ?, updated_at = ?
		WHERE id = ?`,
		coin.Symbol, coin.Name, nullString(coin.Image), coin.CurrentPrice, coin.MarketCap, nullRank(coin.MarketCapRank),
		coin.TotalVolume, coin.High24h, coin.Low24h, coin.PriceChangePercentage24h, time.Now().UTC(),
		coin.ID,
	)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", coin.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a watchlisted coin together with its price history
func (s *Store) Remove(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM cryptocurrencies WHERE id = ? AND is_watchlisted = 1", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM price_history WHERE crypto_id = ?", id); err != nil {
		return fmt.Errorf("delete history of %s: %w", id, err)
	}
	return tx.Commit()
}

// Get returns a watchlisted coin
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM cryptocurrencies WHERE id = ? AND is_watchlisted = 1", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return item, nil
}

// List returns watchlisted coins ordered by market cap rank, unranked last
func (s *Store) List(ctx context.Context, skip, limit int) ([]Item, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM cryptocurrencies
		WHERE is_watchlisted = 1
		ORDER BY market_cap_rank IS NULL, market_cap_rank ASC, market_cap DESC
		LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Count returns the number of watchlisted coins
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cryptocurrencies WHERE is_watchlisted = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("count watchlist: %w", err)
	}
	return n, nil
}

// SaveHistory stores points for id, ignoring timestamps already present.
// Returns the number of new rows.
func (s *Store) SaveHistory(ctx context.Context, id string, points []price.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO price_history (id, crypto_id, price, market_cap, total_volume, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range points {
		ts := p.Timestamp.UTC()
		res, err := stmt.ExecContext(ctx, fmt.Sprintf("%s_%d", id, ts.Unix()), id, p.Price, p.MarketCap, p.TotalVolume, ts)
		if err != nil {
			return 0, fmt.Errorf("insert history of %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// History returns stored points for id between from and to, oldest first.
// Zero bounds are open.
func (s *Store) History(ctx context.Context, id string, from, to time.Time, limit int) ([]price.PricePoint, error) {
	if limit <= 0 {
		limit = 1000
	}

	var (
		where = []string{"crypto_id = ?"}
		args  = []interface{}{id}
	)
	if !from.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, to.UTC())
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT price, market_cap, total_volume, timestamp FROM price_history
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY timestamp ASC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", id, err)
	}
	defer rows.Close()

	var points []price.PricePoint
	for rows.Next() {
		var (
			p            price.PricePoint
			mcap, volume sql.NullFloat64
		)
		if err := rows.Scan(&p.Price, &mcap, &volume, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if mcap.Valid {
			p.MarketCap = &mcap.Float64
		}
		if volume.Valid {
			p.TotalVolume = &volume.Float64
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// CleanupHistory deletes points older than cutoff and returns how many were removed
func (s *Store) CleanupHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM price_history WHERE timestamp < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*Item, error) {
	var (
		item   Item
		image  sql.NullString
		rank   sql.NullInt64
		change sql.NullFloat64
	)
	err := row.Scan(
		&item.ID, &item.Symbol, &item.Name, &image,
		&item.CurrentPrice, &item.MarketCap, &rank, &item.TotalVolume,
		&item.High24h, &item.Low24h, &change, &item.Watchlisted,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Image = image.String
	item.MarketCapRank = int(rank.Int64)
	if change.Valid {
		item.PriceChangePercentage24h = &change.Float64
	}
	return &item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRank(rank int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(rank), Valid: rank > 0}
}
