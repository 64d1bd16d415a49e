package orderbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// BooksTracked tracks the number of (region, item) books in memory.
	BooksTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eve_trade_orderbook_books_tracked",
		Help: "Number of reduced order books held in memory",
	})

	// OrdersReducedTotal counts orders folded into books by side.
	OrdersReducedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eve_trade_orderbook_orders_reduced_total",
			Help: "Total market orders folded into books",
		},
		[]string{"side"},
	)

	OrdersRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eve_trade_orderbook_orders_rejected_total",
		Help: "Market orders skipped for non-positive price or volume",
	})

	ReduceDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eve_trade_orderbook_reduce_duration_seconds",
		Help:    "Time to reduce and swap in one region's orders",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	})

	LockContentionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eve_trade_orderbook_lock_wait_seconds",
		Help:    "Time spent waiting for the orderbook write lock",
		Buckets: []float64{.00001, .0001, .001, .01, .1},
	})
)
