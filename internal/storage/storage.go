package storage

import (
	"context"
	"time"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// Storage is the interface for persisting feed messages, parsed trades and
// alert decisions.
type Storage interface {
	// StoreMessage stores a raw feed message.
	StoreMessage(ctx context.Context, msg *types.RawMessage) error

	// StoreTrade stores the parsed trade for a message.
	StoreTrade(ctx context.Context, messageID int64, trade *types.ParsedTrade) error

	// StoreDecision stores an alert decision.
	StoreDecision(ctx context.Context, decision *types.AlertDecision) error

	// ListMessages returns stored raw messages in [from, to), oldest first.
	// Used by replay to re-evaluate a historical window.
	ListMessages(ctx context.Context, from, to time.Time) ([]types.RawMessage, error)

	// Close closes the storage connection.
	Close() error
}
