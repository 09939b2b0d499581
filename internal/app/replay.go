package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/internal/storage"
	"github.com/quantfeed/blockwatch/pkg/types"
)

// ReplayResult pairs a historical message with its re-evaluated decision.
type ReplayResult struct {
	Message  types.RawMessage     `json:"message"`
	Trade    *types.ParsedTrade   `json:"trade,omitempty"`
	Decision *types.AlertDecision `json:"decision"`
}

// Replay re-evaluates stored messages in [from, to) against the given rules
// and returns results ranked by absolute net premium, largest first. Fired
// decisions sort ahead of skips. Evaluation is pure, so replaying yields the
// same decisions the live pipeline produced, unless the rules changed.
func Replay(
	ctx context.Context,
	store storage.Storage,
	p *parser.Parser,
	engine *alert.Engine,
	rules alert.RuleSet,
	hints parser.HintSource,
	from, to time.Time,
) ([]ReplayResult, error) {
	if hints == nil {
		hints = parser.NoHints{}
	}

	messages, err := store.ListMessages(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	results := make([]ReplayResult, 0, len(messages))
	for _, msg := range messages {
		result := p.Parse(msg.Text, hints)
		decision := engine.Evaluate(msg, result.Trade, rules)
		results = append(results, ReplayResult{
			Message:  msg,
			Trade:    result.Trade,
			Decision: decision,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Decision, results[j].Decision
		if a.Fire != b.Fire {
			return a.Fire
		}
		return premiumOf(a) > premiumOf(b)
	})

	return results, nil
}

func premiumOf(d *types.AlertDecision) float64 {
	if d.Metrics.AbsNetPremiumUSD == nil {
		return 0
	}
	return *d.Metrics.AbsNetPremiumUSD
}
