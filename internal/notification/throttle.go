package notification

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled limits the event rate towards the wrapped notifier. Events over
// the limit wait until a token is free or ctx ends.
type Throttled struct {
	next    Notifier
	limiter *rate.Limiter
}

// NewThrottled wraps next with a token bucket of perSecond events and burst
func NewThrottled(next Notifier, perSecond float64, burst int) *Throttled {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Notify(ctx context.Context, event Event) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification throttled: %w", err)
	}
	return t.next.Notify(ctx, event)
}
