package refdata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	ItemsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eve_trade_refdata_items",
		Help: "Number of items in the loaded reference snapshot",
	})

	HubsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eve_trade_refdata_hubs",
		Help: "Number of trade hubs in the loaded reference snapshot",
	})

	RoutesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eve_trade_refdata_routes",
		Help: "Number of tradeable directed hub pairs",
	})
)
