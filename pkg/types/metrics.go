package types

import "math"

// TradeMetrics is derived once from a ParsedTrade and never recomputed.
//
// The premium fields are nil unless every options leg carries both a parsed
// USD total and a resolved reference price; a trade without them skips
// premium-rule evaluation rather than being treated as zero premium.
type TradeMetrics struct {
	OptionsLegs        []Leg    `json:"options_legs"`
	NonOptionsLegs     []Leg    `json:"non_options_legs"`
	OptionsVolumeSum   float64  `json:"options_volume_sum"`
	OptionsVolumeMax   float64  `json:"options_volume_max"`
	PremiumPaidUSD     *float64 `json:"premium_paid_usd,omitempty"`
	PremiumReceivedUSD *float64 `json:"premium_received_usd,omitempty"`
	NetPremiumUSD      *float64 `json:"net_premium_usd,omitempty"`
	AbsNetPremiumUSD   *float64 `json:"abs_net_premium_usd,omitempty"`
}

// ComputeMetrics derives TradeMetrics from a parsed trade.
func ComputeMetrics(t *ParsedTrade) TradeMetrics {
	m := TradeMetrics{}
	m.OptionsLegs, m.NonOptionsLegs = t.LegsByInstrument()

	premiumResolvable := len(m.OptionsLegs) > 0
	var paid, received float64

	for _, leg := range m.OptionsLegs {
		m.OptionsVolumeSum += leg.Volume
		if leg.Volume > m.OptionsVolumeMax {
			m.OptionsVolumeMax = leg.Volume
		}

		if leg.TotalUSD <= 0 || leg.RefSpotUSD == nil {
			premiumResolvable = false
			continue
		}
		switch leg.Side {
		case SideLong:
			paid += leg.TotalUSD
		case SideShort:
			received += leg.TotalUSD
		}
	}

	if premiumResolvable {
		net := received - paid
		abs := math.Abs(net)
		m.PremiumPaidUSD = &paid
		m.PremiumReceivedUSD = &received
		m.NetPremiumUSD = &net
		m.AbsNetPremiumUSD = &abs
	}

	return m
}
