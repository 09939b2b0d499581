package types

// Asset is the underlying asset of a trade.
type Asset string

const (
	AssetBTC     Asset = "BTC"
	AssetETH     Asset = "ETH"
	AssetUnknown Asset = "Unknown"
)

// InstrumentType classifies a contract.
type InstrumentType string

const (
	InstrumentOptions   InstrumentType = "OPTIONS"
	InstrumentFutures   InstrumentType = "FUTURES"
	InstrumentPerpetual InstrumentType = "PERPETUAL"
	InstrumentUnknown   InstrumentType = "UNKNOWN"
)

// Side is the direction of a single leg.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// RefTier records which tier of the reference-price fallback chain
// resolved a leg's spot price.
type RefTier string

const (
	RefTierLeg       RefTier = "leg-ref"    // Ref: $... attached to the leg line
	RefTierSpotBlock RefTier = "spot-block" // message-level spot prices broadcast
	RefTierHint      RefTier = "hint"       // caller-supplied last-known price
	RefTierNone      RefTier = "none"
)

// Leg is one directional trade within a possibly multi-leg strategy.
// Immutable once constructed.
type Leg struct {
	Contract   string         `json:"contract"`
	Side       Side           `json:"side"`
	Volume     float64        `json:"volume"`
	PriceBase  float64        `json:"price_base"` // per-contract price in the base currency
	PriceUSD   float64        `json:"price_usd"`
	TotalBase  float64        `json:"total_base"` // running total in the base currency
	TotalUSD   float64        `json:"total_usd"`
	IV         *float64       `json:"iv,omitempty"` // implied volatility, percent
	RefSpotUSD *float64       `json:"ref_spot_usd,omitempty"`
	RefTier    RefTier        `json:"ref_tier"`
	Instrument InstrumentType `json:"instrument_type"`
}

// Greeks is the strategy-level sum of the five option risk sensitivities.
// A nil field means the value was absent in the message, which is distinct
// from zero.
type Greeks struct {
	Delta *float64 `json:"delta,omitempty"`
	Gamma *float64 `json:"gamma,omitempty"`
	Vega  *float64 `json:"vega,omitempty"`
	Theta *float64 `json:"theta,omitempty"`
	Rho   *float64 `json:"rho,omitempty"`
}

// ParsedTrade is the structured form of one block-trade message.
type ParsedTrade struct {
	Asset            Asset    `json:"asset"`
	StrategyTitle    string   `json:"strategy_title"`
	Exchange         string   `json:"exchange"`
	Legs             []Leg    `json:"legs"`
	SpotPriceDisplay string   `json:"spot_price_display,omitempty"`
	RefPriceUSD      *float64 `json:"ref_price_usd,omitempty"`
	Greeks           *Greeks  `json:"greeks,omitempty"`
}

// LegsByInstrument splits the trade's legs into options and non-options,
// preserving message order.
func (t *ParsedTrade) LegsByInstrument() (options, other []Leg) {
	for _, leg := range t.Legs {
		if leg.Instrument == InstrumentOptions {
			options = append(options, leg)
		} else {
			other = append(other, leg)
		}
	}
	return options, other
}
