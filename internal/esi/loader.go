package esi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/eve-trade-arb/internal/orderbook"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRefreshInterval is how often prices are reloaded.
const DefaultRefreshInterval = 15 * time.Minute

// ErrRefreshFailed is returned when no region could be refreshed.
var ErrRefreshFailed = errors.New("price refresh failed for every region")

// OrderFetcher downloads all market orders of a region.
type OrderFetcher interface {
	FetchRegionOrders(ctx context.Context, regionID int32) ([]types.MarketOrder, error)
}

// BookWriter persists reduced order books for a region.
type BookWriter interface {
	WriteRegion(ctx context.Context, regionID int32, books map[int32]types.BookPayload) (int, error)
}

// RefreshResult summarises one refresh across all regions.
type RefreshResult struct {
	RegionsLoaded int
	RegionsFailed int
	Orders        int
	Books         int
	Duration      time.Duration
	CompletedAt   time.Time
}

// Loader keeps the quote store current by periodically downloading every
// hub region's orders, reducing them to books and writing them out.
type Loader struct {
	fetcher   OrderFetcher
	books     *orderbook.Manager
	writer    BookWriter
	regions   []int32
	interval  time.Duration
	logger    *zap.Logger
	triggerCh chan struct{}
	doneCh    chan *RefreshResult
	running   sync.Mutex
}

// LoaderConfig holds loader configuration. Writer may be nil when books are
// only needed in memory.
type LoaderConfig struct {
	Fetcher  OrderFetcher
	Books    *orderbook.Manager
	Writer   BookWriter
	Regions  []int32
	Interval time.Duration
	Logger   *zap.Logger
}

// NewLoader creates a new price loader.
func NewLoader(cfg *LoaderConfig) (*Loader, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("order fetcher is required")
	}
	if cfg.Books == nil {
		return nil, errors.New("orderbook manager is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		fetcher:   cfg.Fetcher,
		books:     cfg.Books,
		writer:    cfg.Writer,
		regions:   append([]int32(nil), cfg.Regions...),
		interval:  interval,
		logger:    logger,
		triggerCh: make(chan struct{}, 1),
		doneCh:    make(chan *RefreshResult, 1),
	}, nil
}

// Run refreshes immediately, then on every tick or manual trigger, until ctx
// ends.
func (l *Loader) Run(ctx context.Context) error {
	l.logger.Info("price-loader-starting",
		zap.Int("regions", len(l.regions)),
		zap.Duration("interval", l.interval))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.refreshAndNotify(ctx)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("price-loader-stopping")
			return ctx.Err()
		case <-ticker.C:
			l.refreshAndNotify(ctx)
		case <-l.triggerCh:
			l.logger.Info("manual-price-refresh")
			l.refreshAndNotify(ctx)
			ticker.Reset(l.interval)
		}
	}
}

// TriggerRefresh requests a refresh from the Run loop. It returns false if a
// request is already pending.
func (l *Loader) TriggerRefresh() bool {
	select {
	case l.triggerCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// Refreshed delivers the result of each refresh that loaded at least one
// region. Only the latest unconsumed result is kept.
func (l *Loader) Refreshed() <-chan *RefreshResult {
	return l.doneCh
}

func (l *Loader) refreshAndNotify(ctx context.Context) {
	result, err := l.Refresh(ctx)
	if err != nil {
		l.logger.Error("price-refresh-failed", zap.Error(err))
		return
	}

	// Drop a stale unconsumed result so the newest is delivered.
	select {
	case <-l.doneCh:
	default:
	}
	select {
	case l.doneCh <- result:
	default:
	}
}

// Refresh loads every region once. Regions are independent: a failed region
// keeps its previous books and is reported in the result. An error is
// returned only when nothing could be loaded or ctx ended.
func (l *Loader) Refresh(ctx context.Context) (*RefreshResult, error) {
	l.running.Lock()
	defer l.running.Unlock()

	start := time.Now()
	defer func() {
		RefreshDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	type regionResult struct {
		orders int
		books  int
		err    error
	}
	results := make([]regionResult, len(l.regions))

	var g errgroup.Group
	for i, regionID := range l.regions {
		g.Go(func() error {
			orders, books, err := l.refreshRegion(ctx, regionID)
			results[i] = regionResult{orders: orders, books: books, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &RefreshResult{}
	var errs []error
	for i, r := range results {
		if r.err != nil {
			result.RegionsFailed++
			RegionRefreshesTotal.WithLabelValues("failed").Inc()
			errs = append(errs, r.err)
			l.logger.Warn("region-refresh-failed",
				zap.Int32("region-id", l.regions[i]),
				zap.Error(r.err))
			continue
		}
		result.RegionsLoaded++
		result.Orders += r.orders
		result.Books += r.books
		RegionRefreshesTotal.WithLabelValues("loaded").Inc()
	}

	result.Duration = time.Since(start)
	result.CompletedAt = time.Now()

	err := ctx.Err()
	if err != nil {
		return result, fmt.Errorf("price refresh interrupted: %w", err)
	}

	if len(l.regions) > 0 && result.RegionsLoaded == 0 {
		return result, fmt.Errorf("%w: %w", ErrRefreshFailed, errors.Join(errs...))
	}

	LastRefreshTimestamp.SetToCurrentTime()
	l.logger.Info("price-refresh-complete",
		zap.Int("regions-loaded", result.RegionsLoaded),
		zap.Int("regions-failed", result.RegionsFailed),
		zap.Int("orders", result.Orders),
		zap.Int("books", result.Books),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (l *Loader) refreshRegion(ctx context.Context, regionID int32) (int, int, error) {
	orders, err := l.fetcher.FetchRegionOrders(ctx, regionID)
	if err != nil {
		return 0, 0, err
	}
	OrdersLoadedTotal.Add(float64(len(orders)))

	payloads := l.books.Replace(regionID, orders)

	if l.writer != nil {
		_, err = l.writer.WriteRegion(ctx, regionID, payloads)
		if err != nil {
			return len(orders), 0, err
		}
	}

	return len(orders), len(payloads), nil
}
