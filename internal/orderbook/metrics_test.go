package orderbook

import (
	"testing"
)

// TestMetrics_Registration tests all metrics are initialized
func TestMetrics_Registration(t *testing.T) {
	if BooksTracked == nil {
		t.Error("BooksTracked not registered")
	}

	if OrdersReducedTotal == nil {
		t.Error("OrdersReducedTotal not registered")
	}

	if OrdersRejectedTotal == nil {
		t.Error("OrdersRejectedTotal not registered")
	}

	if ReduceDurationSeconds == nil {
		t.Error("ReduceDurationSeconds not registered")
	}

	if LockContentionDuration == nil {
		t.Error("LockContentionDuration not registered")
	}
}

// TestMetrics_Labels tests label values are accepted
func TestMetrics_Labels(t *testing.T) {
	OrdersReducedTotal.WithLabelValues("sell").Inc()
	OrdersReducedTotal.WithLabelValues("buy").Inc()
}
