package alert

import (
	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

// Engine decides whether a parsed trade raises an alert. It is a pure,
// linear state machine — Received, ExchangeChecked, OptionsFiltered,
// ThresholdsEvaluated, Decided — with no cycles and no side effects beyond
// metrics and logging. Every input, however malformed, resolves to exactly
// one decision; nothing escapes as an error.
type Engine struct {
	logger *zap.Logger
}

// New creates an Engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Evaluate produces the single decision for one message. trade may be nil
// (unparseable message). rules is a read-only snapshot; identical
// (trade, rules) inputs yield bit-identical decisions.
func (e *Engine) Evaluate(msg types.RawMessage, trade *types.ParsedTrade, rules RuleSet) *types.AlertDecision {
	d := &types.AlertDecision{
		ID:        types.DecisionID(msg.ID),
		MessageID: msg.ID,
		Thresholds: types.ThresholdSnapshot{
			PremiumThresholdUSD: rules.PremiumThresholdUSD,
			VolumeAggregation:   string(rules.Aggregation),
			TestMode:            rules.TestMode,
		},
	}

	if trade == nil || len(trade.Legs) == 0 {
		return e.skip(d, types.SkipUnparseable)
	}

	d.Metrics = types.ComputeMetrics(trade)

	// ExchangeChecked.
	if !rules.ExchangeAllowed(trade.Exchange) {
		return e.skip(d, types.SkipWrongExchange)
	}

	// OptionsFiltered: futures and perpetual legs never feed the threshold
	// rules, whatever their size.
	if len(d.Metrics.OptionsLegs) == 0 {
		return e.skip(d, types.SkipNoOptionLegs)
	}

	// Unknown asset resolves before any threshold math.
	threshold, known := rules.VolumeThreshold(trade.Asset)
	if !known {
		return e.skip(d, types.SkipUnknownAsset)
	}
	d.Thresholds.VolumeThreshold = threshold

	// ThresholdsEvaluated.
	volume := d.Metrics.OptionsVolumeSum
	if rules.Aggregation == AggregationMaxLeg {
		volume = d.Metrics.OptionsVolumeMax
	}

	// NOTE: the comparators differ on purpose. The volume rule is strict
	// greater-than (equal to threshold does not fire) while the premium rule
	// is greater-than-or-equal. Both are externally observed contracts and
	// are preserved as-is even though the asymmetry looks like a latent
	// defect; see the boundary tests before "fixing" either one.
	volumeTriggered := volume > threshold

	premiumTriggered := false
	if d.Metrics.AbsNetPremiumUSD != nil {
		premiumTriggered = *d.Metrics.AbsNetPremiumUSD >= rules.PremiumThresholdUSD
	}

	// Decided: both rules accumulate into one decision, never two.
	if volumeTriggered {
		d.Reasons = append(d.Reasons, types.ReasonVolume)
	}
	if premiumTriggered {
		d.Reasons = append(d.Reasons, types.ReasonPremium)
	}
	d.Fire = volumeTriggered || premiumTriggered

	if !d.Fire {
		return e.skip(d, types.SkipBelowThreshold)
	}

	DecisionsTotal.WithLabelValues("fire").Inc()
	for _, r := range d.Reasons {
		AlertReasonsTotal.WithLabelValues(string(r)).Inc()
	}

	e.logger.Info("alert-decision-fired",
		zap.Int64("message-id", msg.ID),
		zap.String("asset", string(trade.Asset)),
		zap.String("exchange", trade.Exchange),
		zap.Float64("options-volume", volume),
		zap.Float64("volume-threshold", threshold),
		zap.Any("reasons", d.Reasons))

	return d
}

func (e *Engine) skip(d *types.AlertDecision, reason types.SkipReason) *types.AlertDecision {
	d.Fire = false
	d.SkipReason = reason
	DecisionsTotal.WithLabelValues("skip").Inc()
	DecisionsSkippedTotal.WithLabelValues(string(reason)).Inc()
	e.logger.Debug("alert-decision-skipped",
		zap.Int64("message-id", d.MessageID),
		zap.String("skip-reason", string(reason)))
	return d
}
