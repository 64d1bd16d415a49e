package quotes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// LookupsTotal counts Redis quote lookups by result
	// (found, missing, malformed, error).
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_quote_lookups_total",
		Help: "Total quote lookups against Redis by result",
	}, []string{"result"})

	ReadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eve_trade_quote_read_duration_seconds",
		Help:    "Latency of a single Redis quote read",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	})

	CoalescedLookupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eve_trade_quote_coalesced_lookups_total",
		Help: "Lookups that shared an in-flight read of the same key",
	})

	BooksWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eve_trade_quote_books_written_total",
		Help: "Total order-book documents written to Redis",
	})
)
