package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// redialJitter spreads simultaneous redials so a feed restart does not get
// hammered by every consumer at once.
const redialJitter = 0.2

// redialer retries the feed connection with jittered exponential backoff.
// The delay grows by mult after each failed dial and resets on success.
type redialer struct {
	initial time.Duration
	max     time.Duration
	mult    float64
	jitter  float64
	logger  *zap.Logger

	mu    sync.Mutex
	delay time.Duration
}

func newRedialer(initial, max time.Duration, mult, jitter float64, logger *zap.Logger) *redialer {
	return &redialer{
		initial: initial,
		max:     max,
		mult:    mult,
		jitter:  jitter,
		logger:  logger,
		delay:   initial,
	}
}

// redial keeps calling dial until it succeeds or ctx is cancelled, sleeping
// the current backoff delay before each attempt.
func (r *redialer) redial(ctx context.Context, dial func(context.Context) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delay := r.nextDelay()

		r.logger.Info("feed-redial-scheduled", zap.Duration("delay", delay))
		ReconnectAttemptsTotal.Inc()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := dial(ctx); err != nil {
			r.logger.Warn("feed-redial-failed", zap.Error(err))
			ReconnectFailuresTotal.Inc()
			r.grow()
			continue
		}

		r.reset()
		r.logger.Info("feed-redial-succeeded")
		return nil
	}
}

func (r *redialer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = r.initial
}

// nextDelay returns the current delay stretched by up to jitter percent.
func (r *redialer) nextDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	stretch := 1.0 + rand.Float64()*r.jitter
	return time.Duration(float64(r.delay) * stretch)
}

func (r *redialer) grow() {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := time.Duration(float64(r.delay) * r.mult)
	if next > r.max {
		next = r.max
	}
	r.delay = next
}
