// Package tracker talks to the beads issue tracker.
//
// The Client interface is the only thing the creator sees. Two adapters
// implement it: CLI spawns the tracker binary, Recorder prints and records
// the would-be commands for dry runs and tests. Throttled and Timeout wrap
// any Client.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyegge/plan2bead/internal/types"
)

// Client is the set of tracker operations a run needs. All calls are
// synchronous and honor ctx cancellation.
type Client interface {
	// Create registers a new issue and returns its identifier.
	Create(ctx context.Context, req CreateRequest) (string, error)
	// AddDependency records that issueID depends on dependsOnID.
	AddDependency(ctx context.Context, issueID, dependsOnID string) error
	// AddLabels attaches labels to an existing issue.
	AddLabels(ctx context.Context, issueID string, labels []string) error
	// Flush forces pending tracker state to disk.
	Flush(ctx context.Context) error
}

// CreateRequest carries the fields sent with a create call.
type CreateRequest struct {
	Title       string
	Type        types.IssueType
	Priority    int
	Description string
}

// RequestFor builds the create request for a parsed task.
func RequestFor(t *types.Task) CreateRequest {
	return CreateRequest{
		Title:       t.Title,
		Type:        t.Type,
		Priority:    t.Priority,
		Description: t.Description,
	}
}

// Kind names a tracker operation.
type Kind string

const (
	KindCreate     Kind = "create"
	KindDependency Kind = "dep"
	KindLabels     Kind = "label"
	KindFlush      Kind = "sync"
)

// ErrNoIdentifier is returned when a create call succeeds but its output
// contains no issue identifier.
var ErrNoIdentifier = errors.New("tracker output contained no issue identifier")

// CommandError reports a tracker command that exited unsuccessfully.
type CommandError struct {
	Args     []string // full command line, binary first
	ExitCode int      // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s failed (exit %d): %s", FormatCommand(e.Args), e.ExitCode, msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Detail returns the tool's diagnostic text, falling back to the underlying
// error when stderr was empty.
func (e *CommandError) Detail() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// idPattern matches beads identifiers such as "bd-a1b2c3" or "br-9f".
var idPattern = regexp.MustCompile(`(?:bd|br)-[a-f0-9]+`)

// ParseID returns the first tracker identifier in output.
func ParseID(output string) (string, bool) {
	id := idPattern.FindString(output)
	return id, id != ""
}
