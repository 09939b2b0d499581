package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_notifications_sent_total",
		Help: "Total number of alert notifications delivered",
	})

	NotificationsDedupedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_notifications_deduped_total",
		Help: "Total number of notifications suppressed as duplicates",
	})

	NotificationsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_notifications_throttled_total",
		Help: "Total number of notifications dropped by the rate limiter",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_notifications_failed_total",
		Help: "Total number of notification delivery failures",
	})
)
