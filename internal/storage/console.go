package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing to console. Useful
// for local runs without a database.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreMessage logs a raw feed message.
func (c *ConsoleStorage) StoreMessage(ctx context.Context, msg *types.RawMessage) error {
	c.logger.Debug("message-received",
		zap.Int64("message-id", msg.ID),
		zap.Time("timestamp", msg.Timestamp))
	return nil
}

// StoreTrade logs a parsed trade summary.
func (c *ConsoleStorage) StoreTrade(ctx context.Context, messageID int64, trade *types.ParsedTrade) error {
	c.logger.Info("trade-parsed",
		zap.Int64("message-id", messageID),
		zap.String("asset", string(trade.Asset)),
		zap.String("exchange", trade.Exchange),
		zap.Int("leg-count", len(trade.Legs)))
	return nil
}

// StoreDecision pretty-prints fired alerts and logs skips.
func (c *ConsoleStorage) StoreDecision(ctx context.Context, decision *types.AlertDecision) error {
	if !decision.Fire {
		c.logger.Debug("decision-skipped",
			zap.Int64("message-id", decision.MessageID),
			zap.String("skip-reason", string(decision.SkipReason)))
		return nil
	}

	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("🚨 BLOCK TRADE ALERT\n")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Decision:  %s\n", decision.ID[:8])
	fmt.Printf("Message:   %d\n", decision.MessageID)
	fmt.Printf("Reasons:   %v\n", decision.Reasons)
	if decision.Metrics.OptionsVolumeSum > 0 {
		fmt.Printf("Volume:    %.2f contracts (threshold %.2f, %s)\n",
			decision.Metrics.OptionsVolumeSum,
			decision.Thresholds.VolumeThreshold,
			decision.Thresholds.VolumeAggregation)
	}
	if decision.Metrics.AbsNetPremiumUSD != nil {
		fmt.Printf("Premium:   $%.2f (threshold $%.2f)\n",
			*decision.Metrics.AbsNetPremiumUSD,
			decision.Thresholds.PremiumThresholdUSD)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// ListMessages returns nothing, console storage keeps no history.
func (c *ConsoleStorage) ListMessages(ctx context.Context, from, to time.Time) ([]types.RawMessage, error) {
	c.logger.Warn("console-storage-has-no-history")
	return nil, nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
