package planning

import "github.com/steveyegge/plan2bead/internal/types"

// NumberedLink is a dependency edge resolved from a "depends on: M" line:
// From depends on To.
type NumberedLink struct {
	From *types.Task
	To   *types.Task
}

// ResolveNumbered maps each task's DependsOn number to the numbered task it
// refers to. The nearest earlier task with that number wins; failing that, the
// first later one. Tasks whose reference matches nothing are returned as
// unresolved.
//
// Resolution is an explicit extension: the default pipeline records the
// numbers but never turns them into edges.
func ResolveNumbered(tasks []*types.Task) (links []NumberedLink, unresolved []*types.Task) {
	for i, task := range tasks {
		if task.DependsOn == 0 {
			continue
		}
		target := findNumbered(tasks, i, task.DependsOn)
		if target == nil {
			unresolved = append(unresolved, task)
			continue
		}
		links = append(links, NumberedLink{From: task, To: target})
	}
	return links, unresolved
}

func findNumbered(tasks []*types.Task, at, number int) *types.Task {
	for i := at - 1; i >= 0; i-- {
		if tasks[i].Number == number {
			return tasks[i]
		}
	}
	for i := at + 1; i < len(tasks); i++ {
		if tasks[i].Number == number {
			return tasks[i]
		}
	}
	return nil
}

// AcyclicLinks keeps links in order, dropping any link that would close a
// cycle with the links kept before it.
func AcyclicLinks(links []NumberedLink) (kept, dropped []NumberedLink) {
	graph := make(map[*types.Task][]*types.Task)
	for _, link := range links {
		if link.From == link.To || reaches(graph, link.To, link.From) {
			dropped = append(dropped, link)
			continue
		}
		graph[link.From] = append(graph[link.From], link.To)
		kept = append(kept, link)
	}
	return kept, dropped
}

// reaches reports whether to is reachable from from in graph.
func reaches(graph map[*types.Task][]*types.Task, from, to *types.Task) bool {
	visited := make(map[*types.Task]bool)
	stack := []*types.Task{from}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == to {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true
		stack = append(stack, graph[node]...)
	}
	return false
}
