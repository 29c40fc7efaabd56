package planning

import (
	"context"
	"fmt"

	"github.com/steveyegge/plan2bead/internal/types"
)

// NumberedReferenceChecker flags "depends on: N" lines whose N matches no
// numbered item in the plan.
type NumberedReferenceChecker struct{}

// Name returns the validator identifier.
func (c *NumberedReferenceChecker) Name() string {
	return "numbered_references"
}

// Priority returns 20.
func (c *NumberedReferenceChecker) Priority() int {
	return 20
}

// Validate reports each dangling reference as a medium warning.
func (c *NumberedReferenceChecker) Validate(ctx context.Context, tasks []*types.Task) ValidationResult {
	result := ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]ValidationWarning, 0),
	}

	_, unresolved := ResolveNumbered(tasks)
	for _, task := range unresolved {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:     "UNRESOLVED_REFERENCE",
			Message:  fmt.Sprintf("%q depends on item %d, which is not in the plan", task.Title, task.DependsOn),
			Location: fmt.Sprintf("line %d", task.Line),
			Severity: WarningSeverityMedium,
		})
	}

	return result
}
