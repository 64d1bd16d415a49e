package app

import (
	"context"
	"errors"
	"time"

	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"github.com/mselser95/eve-trade-arb/internal/esi"
	"go.uber.org/zap"
)

// BatchRunner runs a full batch computation.
type BatchRunner interface {
	RunBatch(ctx context.Context, sink arbitrage.ItemSink) (*arbitrage.BatchResult, error)
}

// BatchScheduler serialises batch runs triggered by a ticker, by completed
// price refreshes and by manual requests.
type BatchScheduler struct {
	engine     BatchRunner
	storage    arbitrage.Storage
	invalidate func()
	interval   time.Duration
	refreshed  <-chan *esi.RefreshResult
	logger     *zap.Logger
	triggerCh  chan struct{}
}

// SchedulerConfig holds scheduler configuration. A zero Interval disables
// periodic runs; a nil Refreshed disables runs after price refreshes.
type SchedulerConfig struct {
	Engine     BatchRunner
	Storage    arbitrage.Storage
	Invalidate func() // drops cached quotes before a run
	Interval   time.Duration
	Refreshed  <-chan *esi.RefreshResult
	Logger     *zap.Logger
}

// NewBatchScheduler creates a scheduler.
func NewBatchScheduler(cfg *SchedulerConfig) *BatchScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchScheduler{
		engine:     cfg.Engine,
		storage:    cfg.Storage,
		invalidate: cfg.Invalidate,
		interval:   cfg.Interval,
		refreshed:  cfg.Refreshed,
		logger:     logger,
		triggerCh:  make(chan struct{}, 1),
	}
}

// Trigger requests a batch run. It returns false if one is already pending.
func (s *BatchScheduler) Trigger() bool {
	select {
	case s.triggerCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run executes batches until ctx ends. Runs never overlap.
func (s *BatchScheduler) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.logger.Info("batch-scheduler-starting",
		zap.Duration("interval", s.interval),
		zap.Bool("follows-price-refresh", s.refreshed != nil))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("batch-scheduler-stopping")
			return ctx.Err()
		case <-tick:
			s.runLogged(ctx, "interval")
		case result := <-s.refreshed:
			s.logger.Debug("batch-after-price-refresh",
				zap.Int("regions-loaded", result.RegionsLoaded),
				zap.Int("books", result.Books))
			s.runLogged(ctx, "price-refresh")
		case <-s.triggerCh:
			s.runLogged(ctx, "manual")
		}
	}
}

// RunOnce drops cached quotes and runs one batch, persisting each item as it
// completes.
func (s *BatchScheduler) RunOnce(ctx context.Context) (*arbitrage.BatchResult, error) {
	if s.invalidate != nil {
		s.invalidate()
	}

	return s.engine.RunBatch(ctx, s.storage.StoreItemOpportunities)
}

func (s *BatchScheduler) runLogged(ctx context.Context, reason string) {
	s.logger.Info("batch-run-triggered", zap.String("reason", reason))

	_, err := s.RunOnce(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("batch-run-failed",
			zap.String("reason", reason),
			zap.Error(err))
	}
}
