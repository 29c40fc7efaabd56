package tracker

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// dryRunPrefix starts every synthetic identifier handed out by a Recorder.
const dryRunPrefix = "dry-run-"

// Call is one operation seen by a Recorder.
type Call struct {
	Kind        Kind
	Command     []string
	Request     CreateRequest // KindCreate only
	IssueID     string
	DependsOnID string   // KindDependency only
	Labels      []string // KindLabels only
}

// Recorder implements Client without touching the tracker. Each call prints
// "DRY RUN: <command>" to its writer, is appended to the call log, and
// succeeds unless a failure was injected for it.
type Recorder struct {
	commands Commands
	out      io.Writer

	mu           sync.Mutex
	calls        []Call
	failKind     map[Kind]error
	failCreate   map[string]error
	noIdentifier map[string]bool
}

// NewRecorder creates a Recorder that prints to out (discarded when nil).
func NewRecorder(binary string, out io.Writer) *Recorder {
	if out == nil {
		out = io.Discard
	}
	return &Recorder{
		commands:     Commands{Binary: binary},
		out:          out,
		failKind:     make(map[Kind]error),
		failCreate:   make(map[string]error),
		noIdentifier: make(map[string]bool),
	}
}

// Fail makes every later call of kind return err.
func (r *Recorder) Fail(kind Kind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failKind[kind] = err
}

// FailCreate makes creating the issue titled title return err.
func (r *Recorder) FailCreate(title string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreate[title] = err
}

// OmitIdentifier makes creating the issue titled title succeed without an
// identifier, as a tracker with unexpected output would.
func (r *Recorder) OmitIdentifier(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noIdentifier[title] = true
}

// Calls returns a copy of the call log in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (r *Recorder) CallsOf(kind Kind) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Create records the call and returns "dry-run-" plus the first eight
// characters of the title.
func (r *Recorder) Create(ctx context.Context, req CreateRequest) (string, error) {
	if err := r.record(Call{Kind: KindCreate, Command: r.commands.Create(req), Request: req}); err != nil {
		return "", err
	}

	r.mu.Lock()
	err, omit := r.failCreate[req.Title], r.noIdentifier[req.Title]
	r.mu.Unlock()
	if err != nil {
		return "", err
	}
	if omit {
		return "", fmt.Errorf("create %q: %w", req.Title, ErrNoIdentifier)
	}
	return DryRunID(req.Title), nil
}

// AddDependency records the call.
func (r *Recorder) AddDependency(ctx context.Context, issueID, dependsOnID string) error {
	return r.record(Call{
		Kind:        KindDependency,
		Command:     r.commands.AddDependency(issueID, dependsOnID),
		IssueID:     issueID,
		DependsOnID: dependsOnID,
	})
}

// AddLabels records the call.
func (r *Recorder) AddLabels(ctx context.Context, issueID string, labels []string) error {
	return r.record(Call{
		Kind:    KindLabels,
		Command: r.commands.AddLabels(issueID, labels),
		IssueID: issueID,
		Labels:  append([]string(nil), labels...),
	})
}

// Flush records the call.
func (r *Recorder) Flush(ctx context.Context) error {
	return r.record(Call{Kind: KindFlush, Command: r.commands.Flush()})
}

func (r *Recorder) record(call Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "DRY RUN: %s\n", FormatCommand(call.Command))
	r.calls = append(r.calls, call)
	return r.failKind[call.Kind]
}

// DryRunID is the synthetic identifier for title: "dry-run-" plus its first
// eight characters.
func DryRunID(title string) string {
	runes := []rune(title)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return dryRunPrefix + string(runes)
}
