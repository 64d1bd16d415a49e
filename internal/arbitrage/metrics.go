package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	modeOnDemand = "on_demand"
	modeBatch    = "batch"
)

var (
	// OpportunitiesFoundTotal tracks opportunities produced, by mode.
	OpportunitiesFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eve_trade_opportunities_found_total",
			Help: "Total number of trade opportunities found before ranking",
		},
		[]string{"mode"},
	)

	// UnitsPrunedTotal tracks (route, item) units dropped, by reason.
	UnitsPrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eve_trade_units_pruned_total",
			Help: "Total number of route/item combinations rejected",
		},
		[]string{"reason"},
	)

	// ComputeDurationSeconds tracks how long a full enumeration takes.
	ComputeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eve_trade_compute_duration_seconds",
			Help:    "Duration of opportunity computation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)

	// ComputeFailuresTotal tracks computations that ended without a result.
	ComputeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eve_trade_compute_failures_total",
			Help: "Total number of computations aborted by cancellation or quote errors",
		},
		[]string{"mode"},
	)

	// QuoteErrorsTotal tracks quote source read failures.
	QuoteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eve_trade_quote_errors_total",
		Help: "Total number of quote source read failures",
	})

	// BatchItemsTotal tracks batch item outcomes.
	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eve_trade_batch_items_total",
			Help: "Total number of items processed by batch runs, by outcome",
		},
		[]string{"outcome"},
	)

	// LastBatchCompletedTimestamp is the unix time of the last complete batch run.
	LastBatchCompletedTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eve_trade_last_batch_completed_timestamp_seconds",
		Help: "Unix timestamp of the last completed batch run",
	})
)
