package alert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal tracks decisions by outcome (fire or skip).
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_alert_decisions_total",
			Help: "Total number of alert decisions by outcome",
		},
		[]string{"outcome"},
	)

	// DecisionsSkippedTotal tracks non-firing decisions by skip reason.
	DecisionsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_alert_decisions_skipped_total",
			Help: "Total number of skipped decisions by reason",
		},
		[]string{"reason"},
	)

	// AlertReasonsTotal tracks triggered rules across firing decisions.
	AlertReasonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_alert_reasons_total",
			Help: "Total number of triggered alert rules",
		},
		[]string{"reason"},
	)
)
