package esi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal tracks ESI requests by HTTP status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_esi_requests_total",
		Help: "Total ESI requests by response status",
	}, []string{"status"})

	// RequestDurationSeconds tracks ESI request latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eve_trade_esi_request_duration_seconds",
		Help:    "Duration of ESI page requests",
		Buckets: prometheus.DefBuckets,
	})

	RetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eve_trade_esi_retries_total",
		Help: "Total ESI requests retried after a transient failure",
	})

	// RefreshDurationSeconds tracks a full price refresh across regions.
	RefreshDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eve_trade_price_refresh_duration_seconds",
		Help:    "Duration of a full price refresh",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	RegionRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_price_region_refreshes_total",
		Help: "Region refreshes by outcome",
	}, []string{"outcome"})

	OrdersLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eve_trade_price_orders_loaded_total",
		Help: "Total market orders downloaded",
	})

	LastRefreshTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eve_trade_price_last_refresh_timestamp_seconds",
		Help: "Unix time of the last refresh that loaded at least one region",
	})
)
