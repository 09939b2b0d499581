package alert

import (
	"fmt"
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// VolumeAggregation selects how options-leg volumes combine into the
// trigger metric. Both modes have been observed in production revisions of
// the rule set, so the mode is configuration, not code.
type VolumeAggregation string

const (
	// AggregationSum triggers on the sum of all options legs' volumes.
	AggregationSum VolumeAggregation = "sum"
	// AggregationMaxLeg triggers on the largest single options leg.
	AggregationMaxLeg VolumeAggregation = "max-leg"
)

// RuleSet is an immutable snapshot of the alert rules for one evaluation.
// Callers reloading configuration must swap in a new snapshot, never mutate
// one in place: concurrent evaluations share it read-only.
type RuleSet struct {
	VolumeThresholds    map[types.Asset]float64
	PremiumThresholdUSD float64
	Aggregation         VolumeAggregation
	AllowedExchanges    []string
	TestMode            bool
}

// Validate rejects rule sets the engine cannot evaluate against.
func (r RuleSet) Validate() error {
	if len(r.VolumeThresholds) == 0 {
		return fmt.Errorf("no volume thresholds configured")
	}
	for asset, v := range r.VolumeThresholds {
		if v < 0 {
			return fmt.Errorf("negative volume threshold for %s: %f", asset, v)
		}
	}
	if r.PremiumThresholdUSD < 0 {
		return fmt.Errorf("negative premium threshold: %f", r.PremiumThresholdUSD)
	}
	if r.Aggregation != AggregationSum && r.Aggregation != AggregationMaxLeg {
		return fmt.Errorf("volume aggregation must be %q or %q, got %q",
			AggregationSum, AggregationMaxLeg, r.Aggregation)
	}
	if len(r.AllowedExchanges) == 0 {
		return fmt.Errorf("empty exchange allow-list")
	}
	return nil
}

// ExchangeAllowed reports whether a venue is on the allow-list.
func (r RuleSet) ExchangeAllowed(exchange string) bool {
	for _, ex := range r.AllowedExchanges {
		if strings.EqualFold(ex, exchange) {
			return true
		}
	}
	return false
}

// VolumeThreshold returns the per-asset threshold, if one is configured.
func (r RuleSet) VolumeThreshold(asset types.Asset) (float64, bool) {
	v, ok := r.VolumeThresholds[asset]
	return v, ok
}
