package parser

import (
	"regexp"
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
)

var (
	// BTC-27FEB26-95000-C / ETH-28NOV25-3000-P
	optionContractRe = regexp.MustCompile(`(?i)-\d+(\.\d+)?-[CP]$`)
	// Dated expiry with no strike/right suffix: BTC-27MAR26
	datedExpiryRe = regexp.MustCompile(`(?i)^[A-Z]+-\d{1,2}[A-Z]{3}\d{2,4}$`)
)

// Classify maps a contract identifier to an instrument kind. A string that
// matches no known pattern is UNKNOWN, never coerced to OPTIONS.
func Classify(contract string) types.InstrumentType {
	c := strings.ToUpper(strings.TrimSpace(contract))
	if c == "" {
		return types.InstrumentUnknown
	}

	if optionContractRe.MatchString(c) {
		return types.InstrumentOptions
	}
	if strings.Contains(c, "PERPETUAL") || strings.Contains(c, "PERP") {
		return types.InstrumentPerpetual
	}
	if strings.Contains(c, "FUTURES") || strings.Contains(c, "FUT") || datedExpiryRe.MatchString(c) {
		return types.InstrumentFutures
	}
	return types.InstrumentUnknown
}

// lineVetoesOptions is the second, independent check applied to the leg's
// own line text: if the line carries a perpetual/futures keyword, the leg is
// excluded from OPTIONS treatment even when its contract token parsed as an
// option. Both checks must agree; disagreement falls back to the keyword's
// classification.
func lineVetoesOptions(lineText string) (types.InstrumentType, bool) {
	upper := strings.ToUpper(lineText)
	if strings.Contains(upper, "PERPETUAL") || strings.Contains(upper, "PERP") {
		return types.InstrumentPerpetual, true
	}
	if strings.Contains(upper, "FUTURES") || strings.Contains(upper, "-FUT") {
		return types.InstrumentFutures, true
	}
	return types.InstrumentUnknown, false
}

// classifyLeg combines the contract check with the line-text veto.
func classifyLeg(contract, lineText string) types.InstrumentType {
	kind := Classify(contract)
	if veto, vetoed := lineVetoesOptions(lineText); vetoed && kind == types.InstrumentOptions {
		return veto
	}
	return kind
}
