// Package priorities extracts issue priority from plan text and applies
// priority inheritance between parent and child tasks.
package priorities

import (
	"strings"

	"github.com/steveyegge/plan2bead/internal/types"
)

// Default is used when neither the task nor any parent states a priority.
const Default = types.DefaultPriority

// token maps a priority marker to its level.
type token struct {
	Text  string
	Level int
}

// Tokens is the fixed scan order. When text contains several markers the one
// listed first here wins, wherever it sits in the text.
var Tokens = []token{
	{"P0", 0}, {"CRITICAL", 0}, {"URGENT", 0},
	{"P1", 1}, {"HIGH", 1},
	{"P2", 2}, {"MEDIUM", 2},
	{"P3", 3}, {"LOW", 3},
	{"P4", 4}, {"BACKLOG", 4},
}

// Extract returns the priority level stated in text and whether one was found.
//
// Matching is a case-insensitive substring test, so "highlight" reads as HIGH.
// A false second result means "not stated", which callers must keep distinct
// from an explicit P0.
func Extract(text string) (int, bool) {
	upper := strings.ToUpper(text)
	for _, tok := range Tokens {
		if strings.Contains(upper, tok.Text) {
			return tok.Level, true
		}
	}
	return 0, false
}

// Resolve picks the effective priority for a task.
//
// Inheritance rules:
// - Explicit: the level stated on the task itself
// - Inherited: the parent's (already resolved) priority
// - Default: P2 when there is no parent
func Resolve(explicit int, found bool, parent *types.Task) int {
	if found {
		return explicit
	}
	if parent != nil {
		return parent.Priority
	}
	return Default
}

// IsToken reports whether word is one of the priority markers (any case).
func IsToken(word string) bool {
	upper := strings.ToUpper(word)
	for _, tok := range Tokens {
		if upper == tok.Text {
			return true
		}
	}
	return false
}
