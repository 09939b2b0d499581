package app

import (
	"context"
	"strings"

	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/notify"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/internal/storage"
	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

// Pipeline drives a feed message through parse, evaluate, persist and
// notify. Spot-price broadcasts update the hint tracker; everything carrying
// the block-trade tag is evaluated against the rules.
type Pipeline struct {
	parser     *parser.Parser
	engine     *alert.Engine
	rules      alert.RuleSet
	store      storage.Storage
	hints      *HintTracker
	journal    *DecisionJournal
	dispatcher *notify.Dispatcher
	blockTag   string
	logger     *zap.Logger
}

// PipelineConfig holds pipeline configuration.
type PipelineConfig struct {
	Parser     *parser.Parser
	Engine     *alert.Engine
	Rules      alert.RuleSet
	Storage    storage.Storage
	Hints      *HintTracker
	Journal    *DecisionJournal
	Dispatcher *notify.Dispatcher
	BlockTag   string
	Logger     *zap.Logger
}

// NewPipeline creates a new pipeline.
func NewPipeline(cfg *PipelineConfig) *Pipeline {
	return &Pipeline{
		parser:     cfg.Parser,
		engine:     cfg.Engine,
		rules:      cfg.Rules,
		store:      cfg.Storage,
		hints:      cfg.Hints,
		journal:    cfg.Journal,
		dispatcher: cfg.Dispatcher,
		blockTag:   cfg.BlockTag,
		logger:     cfg.Logger,
	}
}

// Run consumes feed messages until the channel closes or the context ends.
func (p *Pipeline) Run(ctx context.Context, messages <-chan *types.RawMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			p.handleMessage(ctx, msg)
		}
	}
}

// handleMessage processes one feed message end to end. Storage and notify
// failures are logged, not propagated; one bad message must not stall the
// feed.
func (p *Pipeline) handleMessage(ctx context.Context, msg *types.RawMessage) {
	err := p.store.StoreMessage(ctx, msg)
	if err != nil {
		p.logger.Error("store-message-failed",
			zap.Int64("message-id", msg.ID),
			zap.Error(err))
	}

	p.updateHints(msg.Text)

	if p.blockTag != "" && !strings.Contains(msg.Text, p.blockTag) {
		p.logger.Debug("message-not-block-trade", zap.Int64("message-id", msg.ID))
		return
	}

	result := p.parser.Parse(msg.Text, p.hints)
	if result.Trade != nil {
		err = p.store.StoreTrade(ctx, msg.ID, result.Trade)
		if err != nil {
			p.logger.Error("store-trade-failed",
				zap.Int64("message-id", msg.ID),
				zap.Error(err))
		}

		// A parsed ref price becomes the hint for the next message
		if result.Trade.RefPriceUSD != nil {
			p.hints.Update(result.Trade.Asset, *result.Trade.RefPriceUSD)
		}
	}

	decision := p.engine.Evaluate(*msg, result.Trade, p.rules)

	err = p.store.StoreDecision(ctx, decision)
	if err != nil {
		p.logger.Error("store-decision-failed",
			zap.String("decision-id", decision.ID),
			zap.Error(err))
	}

	p.journal.Add(decision)

	err = p.dispatcher.Dispatch(ctx, notify.Alert{
		Message:  *msg,
		Trade:    result.Trade,
		Decision: decision,
	})
	if err != nil {
		p.logger.Error("dispatch-failed",
			zap.String("decision-id", decision.ID),
			zap.Error(err))
	}
}

// updateHints harvests spot prices from any message, tagged or not. The feed
// interleaves periodic spot broadcasts with block-trade alerts.
func (p *Pipeline) updateHints(text string) {
	spots := parser.ExtractSpotPrices(text)
	for asset, price := range spots {
		p.hints.Update(asset, price)
	}
}
