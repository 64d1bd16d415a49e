package arbitrage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/eve-trade-arb/internal/refdata"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent quote lookups when Config.Workers is unset.
const DefaultWorkers = 32

// QuoteSource resolves the best sell and buy order for an item in a region.
// A missing side is returned as nil and is not an error; an error means the
// source itself could not be read.
type QuoteSource interface {
	Quotes(ctx context.Context, regionID int32, itemID int32) (types.QuotePair, error)
}

// Storage is the interface for persisting batch results. Each call replaces
// everything previously stored for the item.
type Storage interface {
	StoreItemOpportunities(ctx context.Context, itemID int32, opps []*Opportunity) error
	Close() error
}

// ItemSink receives one item's complete opportunity list during a batch run.
type ItemSink func(ctx context.Context, itemID int32, opps []*Opportunity) error

// Engine computes hub-to-hub trade opportunities.
type Engine struct {
	snapshot *refdata.Snapshot
	quotes   QuoteSource
	workers  int
	logger   *zap.Logger
}

// Config holds engine configuration.
type Config struct {
	Workers int
	Logger  *zap.Logger
}

// New creates an engine over an immutable reference snapshot.
func New(cfg Config, snapshot *refdata.Snapshot, quotes QuoteSource) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		snapshot: snapshot,
		quotes:   quotes,
		workers:  workers,
		logger:   logger,
	}
}

// Snapshot returns the reference data the engine enumerates.
func (e *Engine) Snapshot() *refdata.Snapshot {
	return e.snapshot
}

// Compute returns the top opportunities under the caller's constraints,
// ordered by profit. It is all-or-nothing: if ctx ends or the quote source
// fails, no partial result is returned.
func (e *Engine) Compute(ctx context.Context, c Constraints) ([]*Opportunity, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		ComputeDurationSeconds.WithLabelValues(modeOnDemand).Observe(time.Since(start).Seconds())
	}()

	if c.Limit == 0 {
		return []*Opportunity{}, nil
	}

	routes := e.snapshot.Routes()
	items := e.snapshot.Items()
	b := onDemandBounds(c)
	stats := &pruneStats{}

	// One slot per (route, item) so results merge in enumeration order.
	slots := make([][]*Opportunity, len(routes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

schedule:
	for ri, route := range routes {
		slots[ri] = make([]*Opportunity, len(items))
		for ii := range items {
			if gctx.Err() != nil {
				break schedule
			}

			g.Go(func() error {
				opp, err := e.evaluateUnit(gctx, route, items[ii], b, stats)
				if err != nil {
					return err
				}
				slots[ri][ii] = opp
				return nil
			})
		}
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		ComputeFailuresTotal.WithLabelValues(modeOnDemand).Inc()
		return nil, fmt.Errorf("compute opportunities: %w", err)
	}

	stats.flush()

	var results []*Opportunity
	for _, row := range slots {
		for _, opp := range row {
			if opp != nil {
				results = append(results, opp)
			}
		}
	}

	OpportunitiesFoundTotal.WithLabelValues(modeOnDemand).Add(float64(len(results)))

	Rank(results)
	top := TopK(results, c.Limit)

	e.logger.Debug("on-demand-compute-complete",
		zap.Float64("wallet", c.Wallet),
		zap.Float64("cargo", c.Cargo),
		zap.Float64("min-profit", c.MinProfit),
		zap.Int("limit", c.Limit),
		zap.Int("candidates", len(results)),
		zap.Int("returned", len(top)),
		zap.Duration("duration", time.Since(start)))

	return top, nil
}

// BatchResult summarises a batch run.
type BatchResult struct {
	RunID          string
	Opportunities  map[int32][]*Opportunity // items with at least one opportunity
	ItemsEvaluated int
	ItemsFailed    int // quote source errors; nothing stored for these
	StoreFailures  int
	Duration       time.Duration
}

// RunBatch computes, for every item, all profitable routes bounded only by
// order-book liquidity. Items are processed independently and each finished
// item is handed to sink immediately, so readers see progress before the run
// completes. Items whose quotes cannot be read are skipped and their stored
// value is left untouched. ctx is only used to stop early on shutdown.
func (e *Engine) RunBatch(ctx context.Context, sink ItemSink) (*BatchResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	routes := e.snapshot.Routes()
	items := e.snapshot.Items()
	stats := &pruneStats{}

	e.logger.Info("batch-run-starting",
		zap.String("run-id", runID),
		zap.Int("items", len(items)),
		zap.Int("routes", len(routes)))

	slots := make([][]*Opportunity, len(items))
	var evaluated, failed, storeFailures atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.workers)

	for ii, item := range items {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			opps, err := e.itemOpportunities(ctx, routes, item, stats)
			if err != nil {
				failed.Add(1)
				BatchItemsTotal.WithLabelValues("quote_error").Inc()
				e.logger.Warn("batch-item-failed",
					zap.String("run-id", runID),
					zap.Int32("item-id", item.ID),
					zap.Error(err))
				return nil
			}

			evaluated.Add(1)
			slots[ii] = opps

			if sink == nil {
				return nil
			}

			err = sink(ctx, item.ID, opps)
			if err != nil {
				storeFailures.Add(1)
				BatchItemsTotal.WithLabelValues("store_error").Inc()
				e.logger.Error("batch-item-store-failed",
					zap.String("run-id", runID),
					zap.Int32("item-id", item.ID),
					zap.Int("opportunities", len(opps)),
					zap.Error(err))
				return nil
			}

			BatchItemsTotal.WithLabelValues("stored").Inc()
			return nil
		})
	}

	// Workers never return errors; failures are counted per item.
	_ = g.Wait()
	stats.flush()

	result := &BatchResult{
		RunID:          runID,
		Opportunities:  make(map[int32][]*Opportunity),
		ItemsEvaluated: int(evaluated.Load()),
		ItemsFailed:    int(failed.Load()),
		StoreFailures:  int(storeFailures.Load()),
		Duration:       time.Since(start),
	}

	total := 0
	for ii, opps := range slots {
		if len(opps) == 0 {
			continue
		}
		result.Opportunities[items[ii].ID] = opps
		total += len(opps)
	}

	OpportunitiesFoundTotal.WithLabelValues(modeBatch).Add(float64(total))
	ComputeDurationSeconds.WithLabelValues(modeBatch).Observe(result.Duration.Seconds())

	if ctx.Err() != nil {
		ComputeFailuresTotal.WithLabelValues(modeBatch).Inc()
		e.logger.Warn("batch-run-interrupted",
			zap.String("run-id", runID),
			zap.Int("items-evaluated", result.ItemsEvaluated),
			zap.Error(ctx.Err()))
		return result, fmt.Errorf("batch run interrupted: %w", ctx.Err())
	}

	LastBatchCompletedTimestamp.SetToCurrentTime()

	e.logger.Info("batch-run-complete",
		zap.String("run-id", runID),
		zap.Int("items-evaluated", result.ItemsEvaluated),
		zap.Int("items-failed", result.ItemsFailed),
		zap.Int("store-failures", result.StoreFailures),
		zap.Int("items-with-opportunities", len(result.Opportunities)),
		zap.Int("opportunities", total),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// itemOpportunities evaluates one item over every route, in route order.
// The returned slice is never nil so an empty list can replace stale data.
func (e *Engine) itemOpportunities(ctx context.Context, routes []types.Route, item types.Item, stats *pruneStats) ([]*Opportunity, error) {
	opps := make([]*Opportunity, 0)

	for _, route := range routes {
		opp, err := e.evaluateUnit(ctx, route, item, bounds{}, stats)
		if err != nil {
			return nil, err
		}
		if opp != nil {
			opps = append(opps, opp)
		}
	}

	return opps, nil
}

// evaluateUnit fetches quotes for one (route, item) unit and evaluates it.
func (e *Engine) evaluateUnit(ctx context.Context, route types.Route, item types.Item, b bounds, stats *pruneStats) (*Opportunity, error) {
	source, err := e.quotes.Quotes(ctx, route.From.RegionID, item.ID)
	if err != nil {
		QuoteErrorsTotal.Inc()
		return nil, fmt.Errorf("quotes for item %d in region %d: %w", item.ID, route.From.RegionID, err)
	}

	if source.Sell == nil {
		stats.add(reasonNoQuote)
		return nil, nil
	}

	dest, err := e.quotes.Quotes(ctx, route.To.RegionID, item.ID)
	if err != nil {
		QuoteErrorsTotal.Inc()
		return nil, fmt.Errorf("quotes for item %d in region %d: %w", item.ID, route.To.RegionID, err)
	}

	opp, reason := evaluate(route, item, source.Sell, dest.Buy, b)
	if opp == nil {
		stats.add(reason)
	}

	return opp, nil
}

// pruneStats counts pruned units locally and publishes them once per run.
type pruneStats struct {
	noQuote        atomic.Int64
	noMargin       atomic.Int64
	noQuantity     atomic.Int64
	belowMinProfit atomic.Int64
}

func (s *pruneStats) add(reason string) {
	switch reason {
	case reasonNoQuote:
		s.noQuote.Add(1)
	case reasonNoMargin:
		s.noMargin.Add(1)
	case reasonNoQuantity:
		s.noQuantity.Add(1)
	case reasonBelowMinProfit:
		s.belowMinProfit.Add(1)
	}
}

func (s *pruneStats) flush() {
	UnitsPrunedTotal.WithLabelValues(reasonNoQuote).Add(float64(s.noQuote.Load()))
	UnitsPrunedTotal.WithLabelValues(reasonNoMargin).Add(float64(s.noMargin.Load()))
	UnitsPrunedTotal.WithLabelValues(reasonNoQuantity).Add(float64(s.noQuantity.Load()))
	UnitsPrunedTotal.WithLabelValues(reasonBelowMinProfit).Add(float64(s.belowMinProfit.Load()))
}
