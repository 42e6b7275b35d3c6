package eventfeed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedClientsGauge tracks connected feed clients.
	FeedClientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auctionflow_feed_clients",
		Help: "Number of connected swap feed clients",
	})

	// EventsBroadcastTotal tracks event deliveries to clients.
	EventsBroadcastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_feed_events_broadcast_total",
		Help: "Total number of swap events delivered to feed clients",
	})

	// ClientsDroppedTotal tracks clients disconnected for falling behind.
	ClientsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionflow_feed_clients_dropped_total",
		Help: "Total number of feed clients dropped due to full send buffers",
	})
)
