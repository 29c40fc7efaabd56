package tracker

import (
	"strconv"
	"strings"
)

// DefaultBinary is the beads CLI.
const DefaultBinary = "br"

// Commands builds tracker command lines. Every method returns the full argv
// with the binary first.
type Commands struct {
	Binary string
}

func (c Commands) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

// Create builds "br create <title> --type <t> --priority <p> [--description <d>]".
func (c Commands) Create(req CreateRequest) []string {
	args := []string{c.binary(), "create", req.Title,
		"--type", string(req.Type),
		"--priority", strconv.Itoa(req.Priority),
	}
	if req.Description != "" {
		args = append(args, "--description", req.Description)
	}
	return args
}

// AddDependency builds "br dep add <id> <dependsOn>".
func (c Commands) AddDependency(issueID, dependsOnID string) []string {
	return []string{c.binary(), "dep", "add", issueID, dependsOnID}
}

// AddLabels builds "br label add <id> <labels...>".
func (c Commands) AddLabels(issueID string, labels []string) []string {
	return append([]string{c.binary(), "label", "add", issueID}, labels...)
}

// Flush builds "br sync --flush-only".
func (c Commands) Flush() []string {
	return []string{c.binary(), "sync", "--flush-only"}
}

// FormatCommand renders argv for display, quoting arguments that contain
// whitespace or are empty.
func FormatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			parts[i] = strconv.Quote(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
