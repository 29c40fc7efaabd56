// Package planning turns markdown plan documents into ordered task graphs and
// checks those graphs before they are sent to the tracker.
package planning

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/steveyegge/plan2bead/internal/labels"
	"github.com/steveyegge/plan2bead/internal/priorities"
	"github.com/steveyegge/plan2bead/internal/types"
)

var (
	checkboxLine  = regexp.MustCompile(`^([ \t]*)[-*]\s*\[.\]\s*(.+)$`)
	dependsOnLine = regexp.MustCompile(`(?i)^\s*(\d+)\.\s*depends on:\s*(\d+)\s*(?:→|->)\s*(.+)$`)
	numberedLine  = regexp.MustCompile(`^\s*(\d+)\.\s*(.+)$`)

	bracketSpan   = regexp.MustCompile(`\[.*?\]`)
	// priorityBrack matches a bracket in which one comma or space separated
	// word is a priority marker: "[P1]", "[high, infra]", but not "[workflow]".
	priorityBrack = regexp.MustCompile(`\[(?:[^\]]*[\s,])?(?i:P[0-4]|CRITICAL|URGENT|HIGH|MEDIUM|LOW|BACKLOG)(?:[\s,][^\]]*)?\]`)
	priorityWord  = regexp.MustCompile(`(?i)\bP[0-4]\b`)
	hashWord      = regexp.MustCompile(`(^|\s)#[A-Za-z0-9_-]+`)
	headerMarks   = regexp.MustCompile(`^#+\s*`)
)

// sectionStoplist holds generic headers that never become epics.
var sectionStoplist = map[string]bool{
	"#":                   true,
	"implementation plan": true,
	"overview":            true,
}

// nestedIndent is the indentation width (in columns) at which a checkbox is
// treated as a child of the preceding top-level item.
const nestedIndent = 2

// Parser holds the rolling state of one parse: the most recent section epic
// and the most recent top-level checkbox. Deeper nesting collapses onto the
// single item slot.
type Parser struct {
	section *types.Task
	item    *types.Task
	tasks   []*types.Task
}

// Parse converts plan text into tasks in document order. Lines that match no
// rule are ignored. Parsing is a pure function of the text.
func Parse(content string) []*types.Task {
	p := &Parser{}
	for i, line := range strings.Split(content, "\n") {
		p.parseLine(strings.TrimRight(line, "\r"), i+1)
	}
	return p.tasks
}

func (p *Parser) parseLine(line string, lineNo int) {
	// Rule 1: section headers
	if strings.HasPrefix(line, "##") {
		p.section = parseSection(line, lineNo)
		p.item = nil
		p.emit(p.section)
		return
	}

	// Rules 2 and 3: checkboxes, split by indentation
	if m := checkboxLine.FindStringSubmatch(line); m != nil {
		if indentWidth(m[1]) < nestedIndent {
			task := parseItem(m[2], p.section, lineNo)
			if task != nil {
				p.item = task
				p.emit(task)
			}
			return
		}
		if p.item == nil {
			return
		}
		p.emit(parseItem(m[2], p.item, lineNo))
		return
	}

	// Rule 4: "N. depends on: M → title" never attaches to the section
	if m := dependsOnLine.FindStringSubmatch(line); m != nil {
		task := parseItem(m[3], nil, lineNo)
		if task != nil {
			task.Number, _ = strconv.Atoi(m[1])
			task.DependsOn, _ = strconv.Atoi(m[2])
			p.emit(task)
		}
		return
	}

	// Rule 5: plain numbered items
	if m := numberedLine.FindStringSubmatch(line); m != nil {
		task := parseItem(m[2], p.section, lineNo)
		if task != nil {
			task.Number, _ = strconv.Atoi(m[1])
			p.emit(task)
		}
	}
}

func (p *Parser) emit(task *types.Task) {
	if task != nil {
		p.tasks = append(p.tasks, task)
	}
}

// parseSection builds an epic from a header line, or returns nil for empty
// and generic headers.
func parseSection(line string, lineNo int) *types.Task {
	title := headerMarks.ReplaceAllString(line, "")
	title = collapseSpaces(bracketSpan.ReplaceAllString(title, ""))
	if title == "" || sectionStoplist[strings.ToLower(title)] {
		return nil
	}

	level, found := priorities.Extract(line)
	return &types.Task{
		Title:       title,
		Type:        types.TypeEpic,
		Priority:    priorities.Resolve(level, found, nil),
		Labels:      labels.Extract(priorityBrack.ReplaceAllString(line, "")),
		Description: "Epic: " + title,
		Line:        lineNo,
	}
}

// parseItem builds a task or bug from the text of a list item. It returns nil
// when nothing is left of the title after metadata is stripped.
func parseItem(text string, parent *types.Task, lineNo int) *types.Task {
	level, found := priorities.Extract(text)

	text = priorityBrack.ReplaceAllString(text, "")
	text = priorityWord.ReplaceAllString(text, "")
	tags := labels.Extract(text)

	text = bracketSpan.ReplaceAllString(text, "")
	text = hashWord.ReplaceAllString(text, "$1")
	title := collapseSpaces(text)
	if title == "" {
		return nil
	}

	kind, extra := labels.Classify(title)
	return &types.Task{
		Title:    title,
		Type:     kind,
		Priority: priorities.Resolve(level, found, parent),
		Labels:   labels.Merge(tags, extra),
		Parent:   parent,
		Line:     lineNo,
	}
}

// indentWidth counts leading columns, with a tab worth four.
func indentWidth(indent string) int {
	w := 0
	for _, r := range indent {
		if r == '\t' {
			w += 4
		} else {
			w++
		}
	}
	return w
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
