// Package creator turns a parsed plan into tracker issues.
package creator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/steveyegge/plan2bead/internal/logging"
	"github.com/steveyegge/plan2bead/internal/planning"
	"github.com/steveyegge/plan2bead/internal/tracker"
	"github.com/steveyegge/plan2bead/internal/types"
)

// FollowUpHint is printed after a successful flush.
const FollowUpHint = "Beads synced successfully. Run: git add .beads/ && git commit -m 'Add beads from plan'"

// Phase names a step of a run; it tags failures and log entries.
type Phase string

const (
	PhaseCreate Phase = "create"
	PhaseEdges  Phase = "edges"
	PhaseLabels Phase = "labels"
	PhaseFlush  Phase = "flush"
)

// Options controls a run.
type Options struct {
	// Flush runs "sync --flush-only" after the label phase.
	Flush bool
	// DryRun suppresses the flush step and the follow-up hint.
	DryRun bool
	// LinkNumbered turns resolved "depends on: N" references into
	// dependency edges.
	LinkNumbered bool
}

// Failure is one tracker call that did not succeed.
type Failure struct {
	Phase Phase
	Title string // empty for the flush step
	Err   error
}

// Result summarizes a run.
type Result struct {
	Created       int
	Failed        int
	Edges         int
	NumberedEdges int
	SkippedCycles int
	EdgeFailures  int
	Labeled       int
	LabelFailures int
	Flushed       bool

	// IDs maps titles to tracker identifiers. A repeated title keeps the
	// identifier of its last successful creation.
	IDs map[string]string

	Failures []Failure

	// Err is set when the run stopped early because ctx ended.
	Err error
}

// OK reports whether every attempted call succeeded.
func (r *Result) OK() bool {
	return len(r.Failures) == 0 && r.Err == nil
}

// Creator runs the phases of a plan import against one tracker client. Each
// Run owns its own title map, so a Creator can be reused.
type Creator struct {
	client tracker.Client
	out    io.Writer
	errOut io.Writer
	logger *logging.Logger
	opts   Options
}

// New creates a Creator. out receives progress lines, errOut receives one
// line per failed tracker call. Nil writers discard.
func New(client tracker.Client, out, errOut io.Writer, logger *logging.Logger, opts Options) *Creator {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Creator{
		client: client,
		out:    out,
		errOut: errOut,
		logger: logger,
		opts:   opts,
	}
}

// Run creates every task, then links children to parents, then applies
// labels, then optionally flushes. Each phase finishes before the next starts.
// Failures are reported and skipped; nothing is retried or rolled back.
//
// Run writes the assigned identifier into each successfully created task.
func (c *Creator) Run(ctx context.Context, tasks []*types.Task) *Result {
	result := &Result{IDs: make(map[string]string)}

	if !c.createAll(ctx, tasks, result) {
		return result
	}
	if !c.linkParents(ctx, tasks, result) {
		return result
	}
	if c.opts.LinkNumbered && !c.linkNumbered(ctx, tasks, result) {
		return result
	}
	if !c.applyLabels(ctx, tasks, result) {
		return result
	}

	if c.opts.DryRun || !c.opts.Flush {
		return result
	}
	c.flush(ctx, result)
	return result
}

// stopped records ctx's error on result and reports whether the run must end.
func stopped(ctx context.Context, result *Result) bool {
	if err := ctx.Err(); err != nil {
		result.Err = err
		return true
	}
	return false
}

// ==========================================================================
// Phase 1: create every task
// ==========================================================================

func (c *Creator) createAll(ctx context.Context, tasks []*types.Task, result *Result) bool {
	log := c.logger.WithPhase(string(PhaseCreate))
	for _, task := range tasks {
		if stopped(ctx, result) {
			return false
		}

		id, err := c.client.Create(ctx, tracker.RequestFor(task))
		if err != nil {
			result.Failed++
			c.fail(result, PhaseCreate, task.Title, "Error creating bead", err)
			continue
		}

		task.ID = id
		result.IDs[task.Title] = id
		result.Created++
		log.Debug("created issue", "title", task.Title, "id", id, "type", string(task.Type), "priority", task.Priority)
	}
	return true
}

// ==========================================================================
// Phase 2: dependency edges (child depends on parent)
// ==========================================================================

func (c *Creator) linkParents(ctx context.Context, tasks []*types.Task, result *Result) bool {
	log := c.logger.WithPhase(string(PhaseEdges))
	for _, task := range tasks {
		if !task.Created() || task.Parent == nil || !task.Parent.Created() {
			continue
		}
		if stopped(ctx, result) {
			return false
		}

		if err := c.client.AddDependency(ctx, task.ID, task.Parent.ID); err != nil {
			result.EdgeFailures++
			c.fail(result, PhaseEdges, task.Title, "Error adding dependency", err)
			continue
		}
		result.Edges++
		log.Debug("linked to parent", "id", task.ID, "parent_id", task.Parent.ID)
	}
	return true
}

func (c *Creator) linkNumbered(ctx context.Context, tasks []*types.Task, result *Result) bool {
	log := c.logger.WithPhase(string(PhaseEdges))

	links, unresolved := planning.ResolveNumbered(tasks)
	for _, task := range unresolved {
		log.Debug("numbered reference unresolved", "title", task.Title, "depends_on", task.DependsOn)
	}

	kept, dropped := planning.AcyclicLinks(links)
	result.SkippedCycles = len(dropped)
	for _, link := range dropped {
		fmt.Fprintf(c.out, "Skipping numbered dependency %q -> %q: it would close a cycle\n", link.From.Title, link.To.Title)
	}

	for _, link := range kept {
		if !link.From.Created() || !link.To.Created() {
			continue
		}
		if stopped(ctx, result) {
			return false
		}

		if err := c.client.AddDependency(ctx, link.From.ID, link.To.ID); err != nil {
			result.EdgeFailures++
			c.fail(result, PhaseEdges, link.From.Title, "Error adding dependency", err)
			continue
		}
		result.NumberedEdges++
		log.Debug("linked numbered dependency", "id", link.From.ID, "depends_on_id", link.To.ID)
	}
	return true
}

// ==========================================================================
// Phase 3: labels
// ==========================================================================

func (c *Creator) applyLabels(ctx context.Context, tasks []*types.Task, result *Result) bool {
	log := c.logger.WithPhase(string(PhaseLabels))
	for _, task := range tasks {
		if !task.Created() || len(task.Labels) == 0 {
			continue
		}
		if stopped(ctx, result) {
			return false
		}

		if err := c.client.AddLabels(ctx, task.ID, task.Labels); err != nil {
			result.LabelFailures++
			c.fail(result, PhaseLabels, task.Title, "Error adding labels", err)
			continue
		}
		result.Labeled++
		log.Debug("labeled issue", "id", task.ID, "labels", task.Labels)
	}
	return true
}

// ==========================================================================
// Final step: flush
// ==========================================================================

func (c *Creator) flush(ctx context.Context, result *Result) {
	if stopped(ctx, result) {
		return
	}
	if err := c.client.Flush(ctx); err != nil {
		c.fail(result, PhaseFlush, "", "Error syncing beads", err)
		return
	}
	result.Flushed = true
	fmt.Fprintln(c.out, FollowUpHint)
}

// fail records a failed call and echoes the tracker's own error text.
func (c *Creator) fail(result *Result, phase Phase, title, prefix string, err error) {
	result.Failures = append(result.Failures, Failure{Phase: phase, Title: title, Err: err})
	fmt.Fprintf(c.errOut, "%s: %s\n", prefix, detail(err))
	c.logger.WithPhase(string(phase)).Warn("tracker call failed", "title", title, "error", err)
}

// detail extracts the text worth showing the user: the tool's stderr when
// there is one, otherwise the error itself.
func detail(err error) string {
	var cmdErr *tracker.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Detail()
	}
	return err.Error()
}
