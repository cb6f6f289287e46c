package viewer

import (
	"context"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"github.com/pitchpilot/pitch-analyzer/internal/events"
	"github.com/pitchpilot/pitch-analyzer/internal/store"
	"go.uber.org/zap"
)

// Cleaner periodically removes expired shared results.
type Cleaner struct {
	store     store.Store
	publisher Publisher
	interval  time.Duration
	now       func() time.Time
}

func NewCleaner(s store.Store, publisher Publisher, interval time.Duration) *Cleaner {
	return &Cleaner{
		store:     s,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
	}
}

func (c *Cleaner) Run(ctx context.Context) {
	ticker := jitterbug.New(c.interval, &jitterbug.Norm{Stdev: time.Second, Mean: 0})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, err := c.Clean(ctx); err != nil {
			zap.S().Named("viewer").Warnw("failed to remove expired results", "error", err)
		}
	}
}

// Clean removes the shared results expired at the time of the call.
func (c *Cleaner) Clean(ctx context.Context) (int64, error) {
	n, err := c.store.Results().DeleteExpired(ctx, c.now())
	if err != nil {
		return 0, err
	}

	if n > 0 {
		zap.S().Named("viewer").Infow("expired results removed", "count", n)
		publish(ctx, c.publisher, events.DeleteMessageKind, events.DeleteEvent{Expired: true, Timestamp: c.now()})
	}
	return n, nil
}
