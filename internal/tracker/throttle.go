package tracker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Throttled spaces out calls to the wrapped client so that at most one call
// starts per interval.
type Throttled struct {
	next    Client
	limiter *rate.Limiter
}

// NewThrottled wraps next. An interval of zero or less returns next as is.
func NewThrottled(next Client, interval time.Duration) Client {
	if interval <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (t *Throttled) wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}
	return nil
}

func (t *Throttled) Create(ctx context.Context, req CreateRequest) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	return t.next.Create(ctx, req)
}

func (t *Throttled) AddDependency(ctx context.Context, issueID, dependsOnID string) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	return t.next.AddDependency(ctx, issueID, dependsOnID)
}

func (t *Throttled) AddLabels(ctx context.Context, issueID string, labels []string) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	return t.next.AddLabels(ctx, issueID, labels)
}

func (t *Throttled) Flush(ctx context.Context) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	return t.next.Flush(ctx)
}
