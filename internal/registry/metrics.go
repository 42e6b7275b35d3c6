package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PairsCreatedTotal tracks successfully registered pairs.
	PairsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_pairs_created_total",
		Help: "Total number of auction pairs created",
	})

	// PairsRejectedTotal tracks pair creations rejected at validation.
	PairsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_pairs_rejected_total",
		Help: "Total number of pair creations rejected by validation",
	})
)
