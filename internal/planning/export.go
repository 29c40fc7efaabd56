package planning

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/plan2bead/internal/types"
)

// Format selects the rendering used by Export.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// IsValid checks if the format value is valid
func (f Format) IsValid() bool {
	return f == FormatYAML || f == FormatJSON
}

// exportedTask is the flat, pointer-free form of a task. Parents are named by
// title and source line so the output stays readable and diffable.
type exportedTask struct {
	Title       string          `json:"title" yaml:"title"`
	Type        types.IssueType `json:"type" yaml:"type"`
	Priority    int             `json:"priority" yaml:"priority"`
	Labels      []string        `json:"labels,omitempty" yaml:"labels,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Parent      string          `json:"parent,omitempty" yaml:"parent,omitempty"`
	ParentLine  int             `json:"parent_line,omitempty" yaml:"parent_line,omitempty"`
	Number      int             `json:"number,omitempty" yaml:"number,omitempty"`
	DependsOn   int             `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Line        int             `json:"line" yaml:"line"`
}

type exportedPlan struct {
	Source string         `json:"source,omitempty" yaml:"source,omitempty"`
	Count  int            `json:"count" yaml:"count"`
	Tasks  []exportedTask `json:"tasks" yaml:"tasks"`
}

// Export renders parsed tasks in the given format. source is recorded as-is
// (typically the plan path) and may be empty.
func Export(tasks []*types.Task, source string, format Format) ([]byte, error) {
	plan := exportedPlan{
		Source: source,
		Count:  len(tasks),
		Tasks:  make([]exportedTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		et := exportedTask{
			Title:       t.Title,
			Type:        t.Type,
			Priority:    t.Priority,
			Labels:      t.Labels,
			Description: t.Description,
			Number:      t.Number,
			DependsOn:   t.DependsOn,
			Line:        t.Line,
		}
		if t.Parent != nil {
			et.Parent = t.Parent.Title
			et.ParentLine = t.Parent.Line
		}
		plan.Tasks = append(plan.Tasks, et)
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return nil, fmt.Errorf("failed to encode plan as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish yaml output: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode plan as json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want yaml or json)", format)
	}
}

// WriteExport atomically replaces path with data, so a reader never sees a
// half-written export.
func WriteExport(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
