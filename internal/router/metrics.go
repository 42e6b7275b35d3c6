package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwapsRoutedTotal tracks swaps that cleared router validation and
	// committed.
	SwapsRoutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_router_swaps_routed_total",
		Help: "Total number of swaps routed and committed",
	})

	// SwapsRejectedTotal tracks router-level rejections by reason.
	SwapsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auctionflow_router_swaps_rejected_total",
			Help: "Total number of swaps rejected at the router",
		},
		[]string{"reason"},
	)

	// CallbacksRejectedTotal tracks settlement callbacks with invalid
	// provenance.
	CallbacksRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_router_callbacks_rejected_total",
		Help: "Total number of settlement callbacks rejected",
	})
)
