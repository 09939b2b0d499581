package parser

import (
	"strings"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// greekLabels maps each sensitivity to its accepted spellings: the Greek
// letter the feed prints and the English name, matched case-insensitively.
var greekLabels = []struct {
	names  []string
	assign func(g *types.Greeks, v float64)
}{
	{[]string{"Δ", "delta"}, func(g *types.Greeks, v float64) { g.Delta = &v }},
	{[]string{"Γ", "gamma"}, func(g *types.Greeks, v float64) { g.Gamma = &v }},
	{[]string{"ν", "vega"}, func(g *types.Greeks, v float64) { g.Vega = &v }},
	{[]string{"Θ", "theta"}, func(g *types.Greeks, v float64) { g.Theta = &v }},
	{[]string{"ρ", "rho"}, func(g *types.Greeks, v float64) { g.Rho = &v }},
}

// extractGreeks parses the optional strategy-level risk line, e.g.
//
//	Risks: Δ: 2.12, Γ: -0.0020, ν: 423.29, Θ: 3879.16, ρ: 60.24
//
// Absent sensitivities stay nil; a zero value and a missing value are
// different things and must not be conflated. Returns nil when the message
// carries no risk block at all.
func extractGreeks(lines []string) *types.Greeks {
	var g types.Greeks
	found := false

	for _, line := range lines {
		fields := strings.Fields(line)
		for i, f := range fields {
			label := strings.Trim(f, ":,")
			for _, gl := range greekLabels {
				if !matchesLabel(label, gl.names) || i+1 >= len(fields) {
					continue
				}
				v, err := parseAmount(trimNumericJunk(fields[i+1]))
				if err != nil {
					continue
				}
				gl.assign(&g, v)
				found = true
			}
		}
	}

	if !found {
		return nil
	}
	return &g
}

func matchesLabel(tok string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(tok, n) {
			return true
		}
	}
	return false
}
