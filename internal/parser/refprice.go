package parser

import (
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// HintSource supplies the most recently resolved reference price per asset,
// maintained by the caller across messages. The parser never fetches prices
// itself; this is the read-only tier-3 fallback.
type HintSource interface {
	Lookup(asset types.Asset) (float64, bool)
}

// NoHints is a HintSource that never resolves.
type NoHints struct{}

// Lookup implements HintSource.
func (NoHints) Lookup(types.Asset) (float64, bool) { return 0, false }

// Spot-price sanity ranges. A matched number outside its asset's range is a
// strategy-size false positive, not a price.
const (
	btcSpotMin, btcSpotMax = 1_000, 200_000
	ethSpotMin, ethSpotMax = 100, 10_000
)

// spotPriceTag marks the feed's dedicated spot-price broadcast block.
const spotPriceTag = "spot prices"

// SpotPrices holds per-asset USD spot prices from a broadcast message.
type SpotPrices map[types.Asset]float64

// ExtractSpotPrices pulls BTC and ETH spot prices out of a message-level
// "Spot Prices" block. Messages without the tag yield nothing: strategy
// titles also mention assets next to numbers, and only the dedicated
// broadcast is trusted.
func ExtractSpotPrices(text string) SpotPrices {
	if !strings.Contains(strings.ToLower(text), spotPriceTag) {
		return nil
	}

	prices := make(SpotPrices)
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		for i, f := range fields {
			var asset types.Asset
			var lo, hi float64
			switch strings.ToUpper(strings.Trim(f, ":")) {
			case "BTC":
				asset, lo, hi = types.AssetBTC, btcSpotMin, btcSpotMax
			case "ETH":
				asset, lo, hi = types.AssetETH, ethSpotMin, ethSpotMax
			default:
				continue
			}
			if _, seen := prices[asset]; seen || i+1 >= len(fields) {
				continue
			}
			v, err := parseAmount(trimNumericJunk(fields[i+1]))
			if err != nil {
				continue
			}
			if v > lo && v < hi {
				prices[asset] = v
			}
		}
	}
	if len(prices) == 0 {
		return nil
	}
	return prices
}

// resolveRef runs the ordered fallback chain for one leg and returns the
// resolved price and the tier that produced it. All tiers failing is not an
// error; the leg stays valid with premium metrics disabled.
func resolveRef(leg *rawLeg, asset types.Asset, spot SpotPrices, hints HintSource) {
	// Tier 1: Ref: $... attached to the leg's own lines.
	if leg.legRef != nil {
		leg.RefSpotUSD = leg.legRef
		leg.RefTier = types.RefTierLeg
		return
	}

	// Tier 2: message-level spot prices block, matched by asset.
	if v, ok := spot[asset]; ok {
		leg.RefSpotUSD = &v
		leg.RefTier = types.RefTierSpotBlock
		return
	}

	// Tier 3: caller-supplied last-known price.
	if hints != nil {
		if v, ok := hints.Lookup(asset); ok {
			leg.RefSpotUSD = &v
			leg.RefTier = types.RefTierHint
			return
		}
	}

	leg.RefTier = types.RefTierNone
}
