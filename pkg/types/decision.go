package types

import (
	"strconv"

	"github.com/google/uuid"
)

// AlertReason names a rule that triggered an alert.
type AlertReason string

const (
	ReasonVolume  AlertReason = "volume"
	ReasonPremium AlertReason = "premium"
)

// SkipReason explains why a message did not raise an alert.
type SkipReason string

const (
	SkipUnparseable    SkipReason = "unparseable"
	SkipWrongExchange  SkipReason = "wrong_exchange"
	SkipNoOptionLegs   SkipReason = "no_option_legs"
	SkipUnknownAsset   SkipReason = "unknown_asset"
	SkipBelowThreshold SkipReason = "below_threshold"
)

// ThresholdSnapshot records the thresholds a decision was evaluated against.
type ThresholdSnapshot struct {
	VolumeThreshold     float64 `json:"volume_threshold"`
	PremiumThresholdUSD float64 `json:"premium_threshold_usd"`
	VolumeAggregation   string  `json:"volume_aggregation"`
	TestMode            bool    `json:"test_mode"`
}

// AlertDecision is the single, immutable outcome of evaluating one message.
// When both rules trigger, Reasons carries both entries on the same decision;
// the engine never emits two decisions for one message.
type AlertDecision struct {
	ID         string            `json:"id"`
	MessageID  int64             `json:"message_id"`
	Fire       bool              `json:"fire"`
	Reasons    []AlertReason     `json:"reasons,omitempty"`
	SkipReason SkipReason        `json:"skip_reason,omitempty"`
	Metrics    TradeMetrics      `json:"metrics"`
	Thresholds ThresholdSnapshot `json:"thresholds"`
}

// decisionNamespace seeds deterministic decision IDs. Evaluating the same
// message twice must yield a bit-identical decision, so the ID is derived
// from the message ID rather than drawn randomly.
var decisionNamespace = uuid.MustParse("7b1f1fd2-3c52-4a48-9f3e-605a1d6f0b7e")

// DecisionID returns the deterministic decision ID for a message.
func DecisionID(messageID int64) string {
	return uuid.NewSHA1(decisionNamespace, []byte(strconv.FormatInt(messageID, 10))).String()
}

// HasReason reports whether the decision fired for the given rule.
func (d *AlertDecision) HasReason(r AlertReason) bool {
	for _, reason := range d.Reasons {
		if reason == r {
			return true
		}
	}
	return false
}
