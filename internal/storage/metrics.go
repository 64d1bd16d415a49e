package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// StoreOperationsTotal counts item writes by backend and result.
	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eve_trade_storage_operations_total",
		Help: "Total batch result writes by backend and result",
	}, []string{"backend", "result"})
)
