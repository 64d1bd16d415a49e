package app

import (
	"context"
	"sync"

	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"github.com/mselser95/eve-trade-arb/internal/esi"
	"github.com/mselser95/eve-trade-arb/internal/quotes"
	"github.com/mselser95/eve-trade-arb/internal/refdata"
	"github.com/mselser95/eve-trade-arb/internal/storage"
	"github.com/mselser95/eve-trade-arb/pkg/cache"
	"github.com/mselser95/eve-trade-arb/pkg/config"
	"github.com/mselser95/eve-trade-arb/pkg/healthprobe"
	"github.com/mselser95/eve-trade-arb/pkg/httpserver"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	redisClient   *redis.Client
	snapshot      *refdata.Snapshot
	quoteCache    *cache.RistrettoCache
	quoteSource   *quotes.CachedSource
	engine        *arbitrage.Engine
	store         storage.Store
	loader        *esi.Loader
	scheduler     *BatchScheduler
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// DisableScheduler serves on-demand requests only; no batch runs are
	// scheduled or triggered.
	DisableScheduler bool
}
