package journal

import (
	"context"
	"strconv"
	"time"

	"github.com/steveyegge/plan2bead/internal/logging"
	"github.com/steveyegge/plan2bead/internal/tracker"
)

// Journaled records every call of the wrapped client. Failing to write the
// journal is logged and never changes the outcome of the call.
type Journaled struct {
	next   tracker.Client
	store  *Store
	runID  string
	logger *logging.Logger
}

// Wrap returns a client that journals each call of next under runID.
func Wrap(next tracker.Client, store *Store, runID string, logger *logging.Logger) *Journaled {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Journaled{next: next, store: store, runID: runID, logger: logger}
}

func (j *Journaled) Create(ctx context.Context, req tracker.CreateRequest) (string, error) {
	start := time.Now()
	id, err := j.next.Create(ctx, req)
	args := []string{req.Title, string(req.Type), strconv.Itoa(req.Priority)}
	if req.Description != "" {
		args = append(args, req.Description)
	}
	j.record(ctx, tracker.KindCreate, id, args, start, err)
	return id, err
}

func (j *Journaled) AddDependency(ctx context.Context, issueID, dependsOnID string) error {
	start := time.Now()
	err := j.next.AddDependency(ctx, issueID, dependsOnID)
	j.record(ctx, tracker.KindDependency, issueID, []string{dependsOnID}, start, err)
	return err
}

func (j *Journaled) AddLabels(ctx context.Context, issueID string, labels []string) error {
	start := time.Now()
	err := j.next.AddLabels(ctx, issueID, labels)
	j.record(ctx, tracker.KindLabels, issueID, labels, start, err)
	return err
}

func (j *Journaled) Flush(ctx context.Context) error {
	start := time.Now()
	err := j.next.Flush(ctx)
	j.record(ctx, tracker.KindFlush, "", nil, start, err)
	return err
}

func (j *Journaled) record(ctx context.Context, kind tracker.Kind, issueID string, args []string, start time.Time, callErr error) {
	e := &Entry{
		RunID:     j.runID,
		Kind:      kind,
		IssueID:   issueID,
		Args:      args,
		OK:        callErr == nil,
		Duration:  time.Since(start),
		CreatedAt: start,
	}
	if callErr != nil {
		e.Error = callErr.Error()
	}

	// The run's context may already be done; the journal still gets the row.
	if err := j.store.Record(context.WithoutCancel(ctx), e); err != nil {
		j.logger.Warn("failed to journal tracker call", "kind", string(kind), "issue_id", issueID, "error", err)
	}
}
