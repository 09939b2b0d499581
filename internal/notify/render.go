package notify

import (
	"fmt"
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// renderSubject builds the one-line alert headline.
func renderSubject(alert Alert) string {
	asset := types.AssetUnknown
	if alert.Trade != nil {
		asset = alert.Trade.Asset
	}

	parts := make([]string, 0, 2)
	if alert.Decision.HasReason(types.ReasonVolume) {
		parts = append(parts, fmt.Sprintf("volume %.2f", alert.Decision.Metrics.OptionsVolumeSum))
	}
	if alert.Decision.HasReason(types.ReasonPremium) && alert.Decision.Metrics.AbsNetPremiumUSD != nil {
		parts = append(parts, fmt.Sprintf("premium $%.0f", *alert.Decision.Metrics.AbsNetPremiumUSD))
	}

	return fmt.Sprintf("🚨 Block Trade Alert: %s %s", asset, strings.Join(parts, ", "))
}

// renderBody builds the plain-text alert body.
func renderBody(alert Alert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Message ID: %d\n", alert.Message.ID)
	fmt.Fprintf(&b, "Decision:   %s\n", alert.Decision.ID)
	fmt.Fprintf(&b, "Reasons:    %v\n\n", alert.Decision.Reasons)

	if alert.Trade != nil {
		if alert.Trade.StrategyTitle != "" {
			fmt.Fprintf(&b, "Strategy: %s\n", alert.Trade.StrategyTitle)
		}
		if alert.Trade.Exchange != "" {
			fmt.Fprintf(&b, "Exchange: %s\n", alert.Trade.Exchange)
		}
		if alert.Trade.RefPriceUSD != nil {
			fmt.Fprintf(&b, "Ref:      $%.2f\n", *alert.Trade.RefPriceUSD)
		}
		b.WriteString("\nLegs:\n")
		for _, leg := range alert.Trade.Legs {
			fmt.Fprintf(&b, "  %s %.1fx %s", leg.Side, leg.Volume, leg.Contract)
			if leg.TotalUSD > 0 {
				fmt.Fprintf(&b, " ($%.2f)", leg.TotalUSD)
			}
			b.WriteString("\n")
		}
	}

	m := alert.Decision.Metrics
	fmt.Fprintf(&b, "\nOptions volume: %.2f (sum), %.2f (max leg)\n", m.OptionsVolumeSum, m.OptionsVolumeMax)
	if m.AbsNetPremiumUSD != nil {
		fmt.Fprintf(&b, "Net premium:    $%.2f\n", *m.AbsNetPremiumUSD)
	}

	t := alert.Decision.Thresholds
	fmt.Fprintf(&b, "\nThresholds: volume %.2f (%s), premium $%.2f",
		t.VolumeThreshold, t.VolumeAggregation, t.PremiumThresholdUSD)
	if t.TestMode {
		b.WriteString(" [test mode]")
	}
	b.WriteString("\n\nOriginal message:\n")
	b.WriteString(alert.Message.Text)
	b.WriteString("\n")

	return b.String()
}
