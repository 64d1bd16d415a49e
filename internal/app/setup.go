package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"github.com/mselser95/eve-trade-arb/internal/esi"
	"github.com/mselser95/eve-trade-arb/internal/orderbook"
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

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	snapshot, err := refdata.Load(cfg.StaticDataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	redisClient := NewRedisClient(cfg)

	quoteCache, quoteSource, err := setupQuoteSource(cfg, logger, redisClient)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("setup quote source: %w", err)
	}

	engine := NewEngine(cfg, logger, snapshot, quoteSource)

	store, err := NewStore(cfg, logger, redisClient)
	if err != nil {
		quoteCache.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	loader, err := setupLoader(cfg, logger, snapshot, redisClient)
	if err != nil {
		_ = store.Close()
		quoteCache.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("setup price loader: %w", err)
	}

	var scheduler *BatchScheduler
	if !opts.DisableScheduler {
		scheduler = setupScheduler(cfg, logger, engine, store, quoteSource, loader)
	}

	healthChecker := setupHealthChecker(snapshot, redisClient)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, engine, store, loader, scheduler)

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		redisClient:   redisClient,
		snapshot:      snapshot,
		quoteCache:    quoteCache,
		quoteSource:   quoteSource,
		engine:        engine,
		store:         store,
		loader:        loader,
		scheduler:     scheduler,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// NewRedisClient creates the client shared by the quote source, the quote
// writer and the opportunity store.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// NewQuoteSource creates the Redis-backed quote source without an
// in-process cache, for one-shot commands.
func NewQuoteSource(logger *zap.Logger, client *redis.Client) (*quotes.RedisSource, error) {
	return quotes.NewRedisSource(quotes.RedisSourceConfig{
		Client: client,
		Logger: logger,
	})
}

// NewEngine creates the arbitrage engine.
func NewEngine(cfg *config.Config, logger *zap.Logger, snapshot *refdata.Snapshot, source arbitrage.QuoteSource) *arbitrage.Engine {
	return arbitrage.New(arbitrage.Config{
		Workers: cfg.EngineWorkers,
		Logger:  logger,
	}, snapshot, source)
}

// NewStore creates the batch result store selected by STORAGE_MODE.
func NewStore(cfg *config.Config, logger *zap.Logger, client *redis.Client) (storage.Store, error) {
	switch cfg.StorageMode {
	case config.StorageModePostgres:
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	case config.StorageModeConsole:
		return storage.NewConsoleStorage(logger), nil
	default:
		redisStorage, err := storage.NewRedisStorage(&storage.RedisConfig{
			Client: client,
			TTL:    cfg.OpportunityTTL,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis storage: %w", err)
		}
		return redisStorage, nil
	}
}

// NewESIClient creates the market data client.
func NewESIClient(cfg *config.Config, logger *zap.Logger) *esi.Client {
	return esi.NewClient(esi.ClientConfig{
		BaseURL:   cfg.ESIBaseURL,
		UserAgent: cfg.ESIUserAgent,
		RateLimit: cfg.ESIRateLimit,
		Logger:    logger,
	})
}

// NewLoader creates a price loader for the snapshot's hub regions. writer
// may be nil to keep books in memory only.
func NewLoader(
	cfg *config.Config,
	logger *zap.Logger,
	snapshot *refdata.Snapshot,
	books *orderbook.Manager,
	writer esi.BookWriter,
) (*esi.Loader, error) {
	return esi.NewLoader(&esi.LoaderConfig{
		Fetcher:  NewESIClient(cfg, logger),
		Books:    books,
		Writer:   writer,
		Regions:  snapshot.Regions(),
		Interval: cfg.PriceRefreshInterval,
		Logger:   logger,
	})
}

func setupQuoteSource(
	cfg *config.Config,
	logger *zap.Logger,
	client *redis.Client,
) (*cache.RistrettoCache, *quotes.CachedSource, error) {
	redisSource, err := NewQuoteSource(logger, client)
	if err != nil {
		return nil, nil, err
	}

	quoteCache, err := cache.NewRistrettoCache(cache.DefaultQuoteCacheConfig(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("create quote cache: %w", err)
	}

	cachedSource, err := quotes.NewCachedSource(quotes.CachedSourceConfig{
		Inner:  redisSource,
		Cache:  quoteCache,
		TTL:    cfg.QuoteCacheTTL,
		Logger: logger,
	})
	if err != nil {
		quoteCache.Close()
		return nil, nil, fmt.Errorf("create cached quote source: %w", err)
	}

	return quoteCache, cachedSource, nil
}

func setupLoader(
	cfg *config.Config,
	logger *zap.Logger,
	snapshot *refdata.Snapshot,
	client *redis.Client,
) (*esi.Loader, error) {
	if !cfg.PriceLoaderEnabled {
		logger.Info("price-loader-disabled")
		return nil, nil
	}

	writer, err := quotes.NewWriter(quotes.WriterConfig{
		Client: client,
		TTL:    cfg.QuoteTTL,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote writer: %w", err)
	}

	books := orderbook.New(&orderbook.Config{Logger: logger})

	return NewLoader(cfg, logger, snapshot, books, writer)
}

func setupScheduler(
	cfg *config.Config,
	logger *zap.Logger,
	engine *arbitrage.Engine,
	store storage.Store,
	quoteSource *quotes.CachedSource,
	loader *esi.Loader,
) *BatchScheduler {
	schedCfg := &SchedulerConfig{
		Engine:     engine,
		Storage:    store,
		Invalidate: quoteSource.Invalidate,
		Logger:     logger,
	}

	if cfg.BatchEnabled {
		schedCfg.Interval = cfg.BatchInterval
	}
	if loader != nil {
		schedCfg.Refreshed = loader.Refreshed()
	}

	return NewBatchScheduler(schedCfg)
}

func setupHealthChecker(snapshot *refdata.Snapshot, client *redis.Client) *healthprobe.HealthChecker {
	hc := healthprobe.New()

	hc.AddCheck("reference-data", func(context.Context) error {
		if snapshot.Empty() {
			return errors.New("no items or routes loaded")
		}
		return nil
	})

	hc.AddCheck("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	return hc
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	engine *arbitrage.Engine,
	store storage.Store,
	loader *esi.Loader,
	scheduler *BatchScheduler,
) *httpserver.Server {
	serverCfg := &httpserver.Config{
		Port:            cfg.HTTPPort,
		Logger:          logger,
		HealthChecker:   healthChecker,
		Engine:          engine,
		Opportunities:   store,
		OnDemandTimeout: cfg.OnDemandTimeout,
	}

	if loader != nil {
		serverCfg.TriggerRefresh = loader.TriggerRefresh
	}
	if scheduler != nil {
		serverCfg.TriggerBatch = scheduler.Trigger
	}

	return httpserver.New(serverCfg)
}
