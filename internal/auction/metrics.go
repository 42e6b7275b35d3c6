package auction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwapsExecutedTotal tracks committed swaps.
	SwapsExecutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_swaps_executed_total",
		Help: "Total number of committed swaps",
	})

	// SwapsRejectedTotal tracks rejected swaps by reason.
	SwapsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auctionflow_swaps_rejected_total",
			Help: "Total number of rejected swaps",
		},
		[]string{"reason"},
	)

	// SwapDurationSeconds tracks end-to-end swap execution latency.
	SwapDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auctionflow_swap_duration_seconds",
		Help:    "Duration of swap execution including settlement",
		Buckets: prometheus.DefBuckets,
	})

	// LastAuctionPriceGauge tracks the committed price per pair.
	LastAuctionPriceGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "auctionflow_last_auction_price",
			Help: "Most recently committed auction price per pair",
		},
		[]string{"pair_id"},
	)
)
