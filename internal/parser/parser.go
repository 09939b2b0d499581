package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

// knownExchanges are the venues the feed reports, in extraction priority
// order. Matching is a case-insensitive substring scan of the raw text.
var knownExchanges = []string{"Deribit", "OKX", "Binance", "Bybit"}

// Parser turns raw block-trade messages into ParsedTrade values. It is pure:
// the same (text, hints) input always yields the same output, so one Parser
// may be shared across goroutines.
type Parser struct {
	logger *zap.Logger
}

// New creates a Parser.
func New(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Result is the outcome of parsing one message.
type Result struct {
	// Trade is nil when zero legs matched (unparseable message).
	Trade *types.ParsedTrade
	// LegFailures lists leg lines that matched the direction marker but
	// failed downstream parsing. They are excluded from Trade, not fatal.
	LegFailures []error
}

// Parse extracts a structured trade from a message. hints may be nil.
func (p *Parser) Parse(text string, hints HintSource) Result {
	n := Normalize(text)
	rawLegs, failures := extractLegs(n)

	for _, err := range failures {
		var legErr *types.LegParseError
		reason := "other"
		if errors.As(err, &legErr) {
			reason = legErr.Token
		}
		LegsRejectedTotal.WithLabelValues(reason).Inc()
		p.logger.Debug("leg-parse-failed", zap.Error(err))
	}

	if len(rawLegs) == 0 {
		MessagesUnparseableTotal.Inc()
		return Result{LegFailures: failures}
	}

	// Classify each leg with both the contract check and the line-text veto,
	// and pin each leg's asset from its contract prefix.
	assets := make([]types.Asset, len(rawLegs))
	for i := range rawLegs {
		rawLegs[i].Instrument = classifyLeg(rawLegs[i].Contract, rawLegs[i].lineText)
		assets[i] = assetOfContract(rawLegs[i].Contract)
	}

	tradeAsset := majorityAsset(rawLegs, assets)

	// Reference-price resolution: leg trailer, then the message's own spot
	// block, then the caller's hint.
	spot := ExtractSpotPrices(text)
	for i := range rawLegs {
		legAsset := assets[i]
		if legAsset == types.AssetUnknown {
			legAsset = tradeAsset
		}
		resolveRef(&rawLegs[i], legAsset, spot, hints)
		RefResolutionsTotal.WithLabelValues(string(rawLegs[i].RefTier)).Inc()
	}

	trade := &types.ParsedTrade{
		Asset:    tradeAsset,
		Exchange: extractExchange(text),
		Greeks:   extractGreeks(n.Body),
	}
	for _, rl := range rawLegs {
		trade.Legs = append(trade.Legs, rl.Leg)
		LegsExtractedTotal.Inc()
	}

	if ref := tradeRefPrice(trade.Legs); ref != nil {
		trade.RefPriceUSD = ref
		trade.SpotPriceDisplay = fmt.Sprintf("$%.2f", *ref)
	}

	trade.StrategyTitle = n.Header
	if trade.StrategyTitle == "" {
		trade.StrategyTitle = fmt.Sprintf("%s %s (%d legs)",
			trade.Asset, trade.Legs[0].Instrument, len(trade.Legs))
	}

	MessagesParsedTotal.Inc()
	p.logger.Debug("message-parsed",
		zap.String("asset", string(trade.Asset)),
		zap.String("exchange", trade.Exchange),
		zap.Int("legs", len(trade.Legs)),
		zap.Int("leg-failures", len(failures)))

	return Result{Trade: trade, LegFailures: failures}
}

// assetOfContract infers the underlying asset from a contract prefix.
func assetOfContract(contract string) types.Asset {
	upper := strings.ToUpper(contract)
	switch {
	case strings.HasPrefix(upper, "BTC"):
		return types.AssetBTC
	case strings.HasPrefix(upper, "ETH"):
		return types.AssetETH
	default:
		return types.AssetUnknown
	}
}

// majorityAsset picks the trade-level asset: the asset of the majority of
// options legs, ties broken by first-seen order. Falls back to the first
// leg's asset when no options leg names one. Cross-asset strategies are rare
// but must not crash.
func majorityAsset(legs []rawLeg, assets []types.Asset) types.Asset {
	counts := make(map[types.Asset]int)
	var order []types.Asset

	for i, leg := range legs {
		if leg.Instrument != types.InstrumentOptions || assets[i] == types.AssetUnknown {
			continue
		}
		if counts[assets[i]] == 0 {
			order = append(order, assets[i])
		}
		counts[assets[i]]++
	}

	best := types.AssetUnknown
	bestCount := 0
	for _, a := range order {
		if counts[a] > bestCount {
			best, bestCount = a, counts[a]
		}
	}
	if best != types.AssetUnknown {
		return best
	}

	for _, a := range assets {
		if a != types.AssetUnknown {
			return a
		}
	}
	return types.AssetUnknown
}

// extractExchange scans the raw text for a known venue name.
func extractExchange(text string) string {
	lower := strings.ToLower(text)
	for _, ex := range knownExchanges {
		if strings.Contains(lower, strings.ToLower(ex)) {
			return ex
		}
	}
	return "Unknown"
}

// tradeRefPrice picks the trade-level reference price: the first options leg
// with a resolved price, else the first resolved leg of any kind.
func tradeRefPrice(legs []types.Leg) *float64 {
	for _, leg := range legs {
		if leg.Instrument == types.InstrumentOptions && leg.RefSpotUSD != nil {
			return leg.RefSpotUSD
		}
	}
	for _, leg := range legs {
		if leg.RefSpotUSD != nil {
			return leg.RefSpotUSD
		}
	}
	return nil
}
