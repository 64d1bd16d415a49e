// Package orderbook reduces raw regional market orders to per-item books of
// the best standing orders and serves them as quotes.
package orderbook

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mselser95/eve-trade-arb/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultDepth is the number of orders kept per side of a book.
const DefaultDepth = 5

// BookSnapshot is the reduced order book for one item in one region.
// Sell is sorted by ascending price, Buy by descending price.
type BookSnapshot struct {
	RegionID    int32
	ItemID      int32
	Sell        []types.OrderQuote
	Buy         []types.OrderQuote
	LastUpdated time.Time
}

// Payload returns the stored document form of the book.
func (b *BookSnapshot) Payload() types.BookPayload {
	return types.BookPayload{
		Sell: append([]types.OrderQuote(nil), b.Sell...),
		Buy:  append([]types.OrderQuote(nil), b.Buy...),
	}
}

func (b *BookSnapshot) clone() *BookSnapshot {
	c := *b
	c.Sell = append([]types.OrderQuote(nil), b.Sell...)
	c.Buy = append([]types.OrderQuote(nil), b.Buy...)
	return &c
}

type bookKey struct {
	regionID int32
	itemID   int32
}

// Manager holds the latest reduced books for every loaded region.
type Manager struct {
	books  map[bookKey]*BookSnapshot
	depth  int
	mu     sync.RWMutex
	logger *zap.Logger
}

// Config holds orderbook manager configuration.
type Config struct {
	Logger *zap.Logger
	Depth  int
}

// New creates a new orderbook manager.
func New(cfg *Config) *Manager {
	depth := cfg.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		books:  make(map[bookKey]*BookSnapshot),
		depth:  depth,
		logger: logger,
	}
}

// Replace reduces a full download of a region's orders and swaps it in for
// whatever the region held before. Items with no orders in the download are
// dropped. It returns the stored document for every item in the region.
func (m *Manager) Replace(regionID int32, orders []types.MarketOrder) map[int32]types.BookPayload {
	timer := prometheus.NewTimer(ReduceDurationSeconds)
	defer timer.ObserveDuration()

	// Reduce outside the lock.
	reduced := m.reduce(regionID, orders)

	lockStart := time.Now()
	m.mu.Lock()
	LockContentionDuration.Observe(time.Since(lockStart).Seconds())

	for key := range m.books {
		if key.regionID == regionID {
			delete(m.books, key)
		}
	}
	for itemID, book := range reduced {
		m.books[bookKey{regionID: regionID, itemID: itemID}] = book
	}
	BooksTracked.Set(float64(len(m.books)))
	m.mu.Unlock()

	payloads := make(map[int32]types.BookPayload, len(reduced))
	for itemID, book := range reduced {
		payloads[itemID] = book.Payload()
	}

	m.logger.Debug("orderbook-region-replaced",
		zap.Int32("region-id", regionID),
		zap.Int("orders", len(orders)),
		zap.Int("books", len(reduced)))

	return payloads
}

// reduce groups orders by item and keeps the best depth orders per side.
func (m *Manager) reduce(regionID int32, orders []types.MarketOrder) map[int32]*BookSnapshot {
	now := time.Now()
	books := make(map[int32]*BookSnapshot)

	for i := range orders {
		o := &orders[i]
		if o.Price <= 0 || o.VolumeRemain <= 0 {
			OrdersRejectedTotal.Inc()
			continue
		}

		book, ok := books[o.TypeID]
		if !ok {
			book = &BookSnapshot{RegionID: regionID, ItemID: o.TypeID, LastUpdated: now}
			books[o.TypeID] = book
		}

		q := types.OrderQuote{Price: o.Price, VolumeRemain: o.VolumeRemain}
		if o.IsBuyOrder {
			book.Buy = append(book.Buy, q)
			OrdersReducedTotal.WithLabelValues("buy").Inc()
		} else {
			book.Sell = append(book.Sell, q)
			OrdersReducedTotal.WithLabelValues("sell").Inc()
		}
	}

	for _, book := range books {
		sort.SliceStable(book.Sell, func(i, j int) bool { return book.Sell[i].Price < book.Sell[j].Price })
		sort.SliceStable(book.Buy, func(i, j int) bool { return book.Buy[i].Price > book.Buy[j].Price })
		book.Sell = truncate(book.Sell, m.depth)
		book.Buy = truncate(book.Buy, m.depth)
	}

	return books
}

func truncate(quotes []types.OrderQuote, depth int) []types.OrderQuote {
	if len(quotes) <= depth {
		return quotes
	}
	return quotes[:depth:depth]
}

// GetSnapshot returns the book for an item in a region.
func (m *Manager) GetSnapshot(regionID int32, itemID int32) (*BookSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, exists := m.books[bookKey{regionID: regionID, itemID: itemID}]
	if !exists {
		return nil, false
	}

	// Return a copy to avoid race conditions
	return book.clone(), true
}

// Quotes returns the best sell and buy of a book, so the manager can stand
// in for the Redis quote source when prices are fetched in-process.
func (m *Manager) Quotes(ctx context.Context, regionID int32, itemID int32) (types.QuotePair, error) {
	err := ctx.Err()
	if err != nil {
		return types.QuotePair{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	book, exists := m.books[bookKey{regionID: regionID, itemID: itemID}]
	if !exists {
		return types.QuotePair{}, nil
	}

	var pair types.QuotePair
	if len(book.Sell) > 0 {
		best := book.Sell[0]
		pair.Sell = &best
	}
	if len(book.Buy) > 0 {
		best := book.Buy[0]
		pair.Buy = &best
	}
	return pair, nil
}

// Len returns the number of books held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.books)
}
