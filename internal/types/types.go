package types

import (
	"fmt"
	"regexp"
)

// Priority bounds for beads issues (0 = most urgent)
const (
	MinPriority     = 0
	MaxPriority     = 4
	DefaultPriority = 2
)

// IssueType categorizes the kind of work a task becomes in the tracker
type IssueType string

const (
	TypeEpic IssueType = "epic" // Section headers only
	TypeTask IssueType = "task"
	TypeBug  IssueType = "bug"
)

// IsValid checks if the issue type value is valid
func (t IssueType) IsValid() bool {
	switch t {
	case TypeEpic, TypeTask, TypeBug:
		return true
	}
	return false
}

var labelPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// IsValidLabel reports whether label is a lowercase alnum/underscore/hyphen token
func IsValidLabel(label string) bool {
	return labelPattern.MatchString(label)
}

// Task is one planned unit of work parsed from a plan document, before it
// exists in the tracker.
//
// A task is immutable after parsing except for ID, which the creator writes
// exactly once when the tracker assigns an identifier.
type Task struct {
	Title       string    `json:"title" yaml:"title"`
	Type        IssueType `json:"type" yaml:"type"`
	Priority    int       `json:"priority" yaml:"priority"`
	Labels      []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`

	// Parent is the enclosing section (top-level items) or enclosing item
	// (nested checkboxes). It always points at a task parsed earlier.
	Parent *Task `json:"-" yaml:"-"`

	// Number is the ordinal of a numbered list item (0 if not numbered).
	Number int `json:"number,omitempty" yaml:"number,omitempty"`
	// DependsOn is M from a "N. depends on: M → title" line (0 if absent).
	DependsOn int `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	// Line is the 1-based source line the task was parsed from.
	Line int `json:"line" yaml:"line"`

	// ID is the tracker identifier, empty until creation succeeds.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Validate checks if the task has valid field values
func (t *Task) Validate() error {
	if len(t.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(t.Title))
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return fmt.Errorf("priority must be between %d and %d (got %d)", MinPriority, MaxPriority, t.Priority)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("invalid issue type: %s", t.Type)
	}
	for _, l := range t.Labels {
		if !IsValidLabel(l) {
			return fmt.Errorf("invalid label %q", l)
		}
	}
	if t.Type == TypeEpic && t.Parent != nil {
		return fmt.Errorf("epic %q cannot have a parent", t.Title)
	}
	return nil
}

// Created reports whether the tracker has assigned an identifier
func (t *Task) Created() bool {
	return t.ID != ""
}

// ParentTitle returns the parent's title, or "" for root tasks
func (t *Task) ParentTitle() string {
	if t.Parent == nil {
		return ""
	}
	return t.Parent.Title
}

// String returns a short human-readable form, e.g. "[P1 bug] Fix login bug"
func (t *Task) String() string {
	return fmt.Sprintf("[P%d %s] %s", t.Priority, t.Type, t.Title)
}
