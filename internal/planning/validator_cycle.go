package planning

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/plan2bead/internal/types"
)

// CycleDetector checks that "depends on: N" references form a directed acyclic
// graph. A cycle there means the numbered edges cannot all be created.
//
// The cycle is an error only when LinkNumbered is set, since otherwise the
// references never become edges.
type CycleDetector struct {
	LinkNumbered bool
}

// Name returns the validator identifier.
func (d *CycleDetector) Name() string {
	return "cycle_detector"
}

// Priority returns 1 (runs first, as this is a structural check).
func (d *CycleDetector) Priority() int {
	return 1
}

// Validate reports the first cycle found in the numbered dependency graph.
func (d *CycleDetector) Validate(ctx context.Context, tasks []*types.Task) ValidationResult {
	result := ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]ValidationWarning, 0),
	}

	links, _ := ResolveNumbered(tasks)
	cycle := d.detectCycle(tasks, links)
	if len(cycle) == 0 {
		return result
	}

	titles := make([]string, len(cycle))
	for i, t := range cycle {
		titles[i] = t.Title
	}
	message := fmt.Sprintf("Circular numbered dependency detected: %s", strings.Join(titles, " → "))
	location := fmt.Sprintf("line %d", cycle[0].Line)

	if !d.LinkNumbered {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:     "NUMBERED_CYCLE_DETECTED",
			Message:  message,
			Location: location,
			Severity: WarningSeverityLow,
		})
		return result
	}

	result.Errors = append(result.Errors, ValidationError{
		Code:     "NUMBERED_CYCLE_DETECTED",
		Message:  message,
		Location: location,
		Details: map[string]interface{}{
			"cycle": titles,
		},
	})

	return result
}

// detectCycle uses DFS to detect cycles among numbered links.
// Returns the cycle path (closed, first node repeated) if found.
func (d *CycleDetector) detectCycle(tasks []*types.Task, links []NumberedLink) []*types.Task {
	graph := make(map[*types.Task][]*types.Task)
	for _, link := range links {
		graph[link.From] = append(graph[link.From], link.To)
	}

	visited := make(map[*types.Task]bool)
	recStack := make(map[*types.Task]bool)
	var path []*types.Task

	var dfs func(*types.Task) bool
	dfs = func(node *types.Task) bool {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		for _, neighbor := range graph[node] {
			if !visited[neighbor] {
				if dfs(neighbor) {
					return true
				}
			} else if recStack[neighbor] {
				cycleStart := 0
				for i, p := range path {
					if p == neighbor {
						cycleStart = i
						break
					}
				}
				path = append(path[cycleStart:], neighbor)
				return true
			}
		}

		recStack[node] = false
		path = path[:len(path)-1]
		return false
	}

	for _, task := range tasks {
		if !visited[task] {
			path = make([]*types.Task, 0)
			if dfs(task) {
				return path
			}
		}
	}

	return nil
}
