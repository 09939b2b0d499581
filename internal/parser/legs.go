package parser

import (
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// Leg lines follow a small fixed grammar:
//
//	direction size contract ["at" priceBase currency "(" priceUSD ")"]
//	"Total" Bought|Sold ":" totalBase currency "(" totalUSD ")" [",IV:" pct] [",Ref:" usd]
//
// The first line carries the direction marker (a buy/sell glyph or the
// Bought/Sold keyword); the second is the running-total continuation. Keyword
// matching is case-insensitive. A line that matches the direction marker but
// fails a mandatory token is dropped as a LegParseError without aborting the
// message.
const (
	glyphLong  = "🟢"
	glyphShort = "🔴"
)

// rawLeg is a leg as extracted from the text, before reference-price
// resolution and instrument classification settle.
type rawLeg struct {
	types.Leg
	lineText string   // original leg line, for the defensive instrument check
	legRef   *float64 // Ref: $... from the continuation trailer, tier 1
}

// directionOf returns the side indicated by a line's leading direction
// marker, if any. Only the first two tokens are considered so that contract
// names containing "bought" cannot start a leg.
func directionOf(line string) (types.Side, bool) {
	fields := strings.Fields(line)
	limit := 2
	if len(fields) < limit {
		limit = len(fields)
	}
	for _, f := range fields[:limit] {
		// The glyph occasionally arrives glued to the keyword.
		f = strings.TrimPrefix(strings.TrimPrefix(f, glyphLong), glyphShort)
		switch {
		case strings.HasPrefix(fields[0], glyphLong), strings.EqualFold(f, "bought"):
			return types.SideLong, true
		case strings.HasPrefix(fields[0], glyphShort), strings.EqualFold(f, "sold"):
			return types.SideShort, true
		}
	}
	return "", false
}

// extractLegs scans body lines for leg patterns. Failed legs are returned as
// errors alongside the successfully parsed ones (partial success policy).
func extractLegs(n Normalized) ([]rawLeg, []error) {
	var legs []rawLeg
	var failures []error

	for i := 0; i < len(n.Body); i++ {
		line := n.Body[i]
		side, ok := directionOf(line)
		if !ok {
			continue
		}

		leg, err := parseLegLine(i, line, side)
		if err != nil {
			failures = append(failures, err)
			continue
		}

		// Continuation line with totals and the IV/Ref trailer.
		if i+1 < len(n.Body) && isTotalLine(n.Body[i+1]) {
			parseTotalLine(n.Body[i+1], &leg)
			i++
		}

		legs = append(legs, leg)
	}
	return legs, failures
}

// parseLegLine parses the direction line of a leg.
func parseLegLine(lineIdx int, line string, side types.Side) (rawLeg, error) {
	leg := rawLeg{lineText: line}
	leg.Side = side
	leg.RefTier = types.RefTierNone

	fields := strings.Fields(line)

	// Locate the size token: <number>x.
	sizeIdx := -1
	for i, f := range fields {
		f = trimNumericJunk(f)
		if len(f) < 2 || (f[len(f)-1] != 'x' && f[len(f)-1] != 'X') {
			continue
		}
		v, err := parseAmount(f[:len(f)-1])
		if err != nil {
			continue
		}
		leg.Volume = v
		sizeIdx = i
		break
	}
	if sizeIdx < 0 {
		return leg, &types.LegParseError{Line: lineIdx, Token: "size", Reason: "no <number>x token"}
	}
	if leg.Volume <= 0 {
		return leg, &types.LegParseError{Line: lineIdx, Token: "size", Reason: "non-positive volume"}
	}

	// The contract token follows the size token.
	if sizeIdx+1 >= len(fields) {
		return leg, &types.LegParseError{Line: lineIdx, Token: "contract", Reason: "missing contract after size"}
	}
	leg.Contract = strings.Trim(fields[sizeIdx+1], ",:")
	if leg.Contract == "" || strings.EqualFold(leg.Contract, "at") {
		return leg, &types.LegParseError{Line: lineIdx, Token: "contract", Reason: "missing contract after size"}
	}

	// Optional price clause: at <base> <currency> ($<usd>).
	for i := sizeIdx + 2; i < len(fields); i++ {
		if !strings.EqualFold(fields[i], "at") || i+1 >= len(fields) {
			continue
		}
		base, err := parseAmount(trimNumericJunk(fields[i+1]))
		if err != nil {
			return leg, &types.LegParseError{Line: lineIdx, Token: "price", Reason: err.Error()}
		}
		leg.PriceBase = base
		for j := i + 2; j < len(fields) && j <= i+3; j++ {
			tok := trimNumericJunk(fields[j])
			if !strings.HasPrefix(fields[j], "($") && !strings.HasPrefix(tok, "$") {
				continue
			}
			usd, err := parseAmount(tok)
			if err != nil {
				return leg, &types.LegParseError{Line: lineIdx, Token: "price", Reason: err.Error()}
			}
			leg.PriceUSD = usd
			break
		}
		break
	}

	return leg, nil
}

// isTotalLine reports whether a line is a "Total Bought/Sold:" continuation.
func isTotalLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "total bought") || strings.HasPrefix(lower, "total sold")
}

// parseTotalLine fills the running totals and the optional IV/Ref trailer.
// Trailer fields are best-effort: a malformed trailer leaves the field unset
// rather than failing the leg.
func parseTotalLine(line string, leg *rawLeg) {
	fields := strings.Fields(line)

	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case strings.EqualFold(strings.TrimSuffix(tok, ":"), "total"):
			// "Total Bought:" — the base amount follows the side keyword.
			if i+2 < len(fields) {
				if v, err := parseAmount(trimNumericJunk(fields[i+2])); err == nil {
					leg.TotalBase = v
				}
			}
		case strings.HasPrefix(tok, "($"):
			if v, err := parseAmount(trimNumericJunk(tok)); err == nil {
				leg.TotalUSD = v
			}
		case strings.EqualFold(strings.TrimSuffix(tok, ":"), "iv"):
			if i+1 < len(fields) {
				raw := strings.TrimSuffix(trimNumericJunk(fields[i+1]), "%")
				if v, err := parseAmount(raw); err == nil {
					leg.IV = &v
				}
			}
		case strings.EqualFold(strings.TrimSuffix(tok, ":"), "ref"):
			if i+1 < len(fields) {
				if v, err := parseAmount(trimNumericJunk(fields[i+1])); err == nil {
					leg.legRef = &v
				}
			}
		}
	}
}
