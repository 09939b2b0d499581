package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/quantfeed/blockwatch/pkg/cache"
	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Alert bundles everything a sender needs to render a notification.
type Alert struct {
	Message  types.RawMessage
	Trade    *types.ParsedTrade
	Decision *types.AlertDecision
}

// Sender delivers a rendered alert to one channel.
type Sender interface {
	Send(ctx context.Context, alert Alert) error
}

// Dispatcher fans fired decisions out to a sender, suppressing duplicate
// deliveries for the same message and capping the outbound rate. A feed
// reconnect can replay recent messages; the dedup cache keeps replays from
// paging anyone twice.
type Dispatcher struct {
	sender   Sender
	dedup    cache.Cache
	dedupTTL time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	Sender        Sender
	Dedup         cache.Cache
	DedupTTL      time.Duration
	RatePerMinute float64
	Logger        *zap.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(cfg *DispatcherConfig) *Dispatcher {
	burst := int(cfg.RatePerMinute)
	if burst < 1 {
		burst = 1
	}

	return &Dispatcher{
		sender:   cfg.Sender,
		dedup:    cfg.Dedup,
		dedupTTL: cfg.DedupTTL,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerMinute/60.0), burst),
		logger:   cfg.Logger,
	}
}

// Dispatch delivers the alert for a fired decision. Skipped decisions and
// duplicates return nil without touching the sender.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) error {
	if alert.Decision == nil || !alert.Decision.Fire {
		return nil
	}

	key := dedupKey(alert.Decision.MessageID)
	if _, seen := d.dedup.Get(key); seen {
		NotificationsDedupedTotal.Inc()
		d.logger.Info("notification-deduped",
			zap.Int64("message-id", alert.Decision.MessageID))
		return nil
	}

	if !d.limiter.Allow() {
		NotificationsThrottledTotal.Inc()
		d.logger.Warn("notification-throttled",
			zap.Int64("message-id", alert.Decision.MessageID))
		return nil
	}

	err := d.sender.Send(ctx, alert)
	if err != nil {
		NotificationsFailedTotal.Inc()
		return fmt.Errorf("send alert for message %d: %w", alert.Decision.MessageID, err)
	}

	d.dedup.Set(key, struct{}{}, d.dedupTTL)
	NotificationsSentTotal.Inc()
	d.logger.Info("notification-sent",
		zap.Int64("message-id", alert.Decision.MessageID),
		zap.String("decision-id", alert.Decision.ID))
	return nil
}

func dedupKey(messageID int64) string {
	return "dedup:" + strconv.FormatInt(messageID, 10)
}
