package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the active feed connection.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blockwatch_feed_active_connections",
		Help: "Number of active feed WebSocket connections",
	})

	// ReconnectAttemptsTotal tracks reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_feed_reconnect_attempts_total",
		Help: "Total number of feed reconnection attempts",
	})

	// ReconnectFailuresTotal tracks reconnection failures.
	ReconnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_feed_reconnect_failures_total",
		Help: "Total number of feed reconnection failures",
	})

	// MessagesReceivedTotal tracks decoded feed messages.
	MessagesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_feed_messages_received_total",
		Help: "Total number of feed messages received",
	})

	// MessagesDroppedTotal tracks dropped frames by reason.
	MessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_feed_messages_dropped_total",
			Help: "Total number of feed frames dropped",
		},
		[]string{"reason"},
	)

	// ConnectionDuration tracks feed connection lifetime.
	ConnectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blockwatch_feed_connection_duration_seconds",
		Help:    "Duration of feed connections before disconnect",
		Buckets: []float64{60, 300, 600, 1800, 3600, 7200, 14400, 28800, 43200, 86400},
	})
)
