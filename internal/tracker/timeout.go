package tracker

import (
	"context"
	"time"
)

// Timeout bounds every call to the wrapped client by a fixed duration.
type Timeout struct {
	next  Client
	limit time.Duration
}

// NewTimeout wraps next. A limit of zero or less returns next as is.
func NewTimeout(next Client, limit time.Duration) Client {
	if limit <= 0 {
		return next
	}
	return &Timeout{next: next, limit: limit}
}

func (t *Timeout) Create(ctx context.Context, req CreateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()
	return t.next.Create(ctx, req)
}

func (t *Timeout) AddDependency(ctx context.Context, issueID, dependsOnID string) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()
	return t.next.AddDependency(ctx, issueID, dependsOnID)
}

func (t *Timeout) AddLabels(ctx context.Context, issueID string, labels []string) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()
	return t.next.AddLabels(ctx, issueID, labels)
}

func (t *Timeout) Flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()
	return t.next.Flush(ctx)
}
