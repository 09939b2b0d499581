package parser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesParsedTotal tracks messages that yielded at least one leg.
	MessagesParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_parser_messages_parsed_total",
		Help: "Total number of messages parsed into at least one leg",
	})

	// MessagesUnparseableTotal tracks messages with zero recognizable legs.
	MessagesUnparseableTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_parser_messages_unparseable_total",
		Help: "Total number of messages with no extractable legs",
	})

	// LegsExtractedTotal tracks successfully extracted legs.
	LegsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockwatch_parser_legs_extracted_total",
		Help: "Total number of legs extracted from messages",
	})

	// LegsRejectedTotal tracks dropped legs by failing token.
	LegsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_parser_legs_rejected_total",
			Help: "Total number of leg lines dropped during parsing",
		},
		[]string{"token"},
	)

	// RefResolutionsTotal tracks reference-price resolutions by tier.
	RefResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_parser_ref_resolutions_total",
			Help: "Reference-price resolutions by fallback tier",
		},
		[]string{"tier"},
	)
)
