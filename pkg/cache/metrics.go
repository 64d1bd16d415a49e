package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache"})

	CacheSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_cache_sets_total",
		Help: "Total number of admitted cache sets",
	}, []string{"cache"})

	CacheClearsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_cache_clears_total",
		Help: "Total number of full cache clears",
	}, []string{"cache"})

	CacheHitRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "eve_trade_cache_hit_ratio",
		Help: "Hit ratio reported by the cache since start",
	}, []string{"cache"})

	CacheOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eve_trade_cache_operation_duration_seconds",
		Help:    "Duration of cache operations",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005},
	}, []string{"cache", "operation"})
)
