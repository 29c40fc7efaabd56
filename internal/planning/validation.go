package planning

import (
	"context"
	"sort"

	"github.com/steveyegge/plan2bead/internal/types"
)

// Validator is the interface for pluggable plan checks. Validators only
// report; they never stop a run.
type Validator interface {
	// Name returns a unique identifier for this validator.
	Name() string

	// Priority determines execution order (lower values run first).
	//   1-9:   structural checks (cycles)
	//   10-99: content checks (duplicates, dangling references)
	Priority() int

	// Validate checks the parsed tasks and returns any errors or warnings found.
	Validate(ctx context.Context, tasks []*types.Task) ValidationResult
}

// ValidationResult contains errors and warnings from validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a structural problem in the plan.
type ValidationError struct {
	// Code is a machine-readable error identifier (e.g., "CYCLE_DETECTED").
	Code string

	// Message is a human-readable error description.
	Message string

	// Location indicates where in the plan the error occurs (e.g., "line 12").
	Location string

	// Details provides additional context as key-value pairs.
	Details map[string]interface{}
}

// ValidationWarning represents something worth a second look.
type ValidationWarning struct {
	Code     string
	Message  string
	Location string
	Severity WarningSeverity
}

// WarningSeverity indicates the importance of a warning.
type WarningSeverity int

const (
	// WarningSeverityLow indicates minor issues that are nice to fix.
	WarningSeverityLow WarningSeverity = iota

	// WarningSeverityMedium indicates issues that should be addressed.
	WarningSeverityMedium

	// WarningSeverityHigh indicates issues that change what ends up in the tracker.
	WarningSeverityHigh
)

// String returns the string representation of the severity.
func (s WarningSeverity) String() string {
	switch s {
	case WarningSeverityLow:
		return "LOW"
	case WarningSeverityMedium:
		return "MEDIUM"
	case WarningSeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// ValidatorRegistry manages a collection of validators and orchestrates validation.
type ValidatorRegistry struct {
	validators []Validator
}

// NewValidatorRegistry creates a new empty registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{
		validators: make([]Validator, 0),
	}
}

// DefaultValidators returns a registry with every built-in validator.
// linkNumbered states whether numbered references will become edges.
func DefaultValidators(linkNumbered bool) *ValidatorRegistry {
	r := NewValidatorRegistry()
	r.Register(&CycleDetector{LinkNumbered: linkNumbered})
	r.Register(&DuplicateTitleDetector{})
	r.Register(&NumberedReferenceChecker{})
	return r
}

// Register adds a validator to the registry.
// Validators are automatically sorted by priority after registration.
func (r *ValidatorRegistry) Register(v Validator) {
	r.validators = append(r.validators, v)
	sort.SliceStable(r.validators, func(i, j int) bool {
		return r.validators[i].Priority() < r.validators[j].Priority()
	})
}

// Validators returns the registered validators in execution order.
func (r *ValidatorRegistry) Validators() []Validator {
	return r.validators
}

// ValidateAll runs all registered validators against the tasks.
// All validators run even if earlier ones report errors.
func (r *ValidatorRegistry) ValidateAll(ctx context.Context, tasks []*types.Task) ValidationResult {
	result := ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]ValidationWarning, 0),
	}

	for _, v := range r.validators {
		vr := v.Validate(ctx, tasks)
		result.Errors = append(result.Errors, vr.Errors...)
		result.Warnings = append(result.Warnings, vr.Warnings...)
	}

	return result
}

// HasErrors returns true if the validation result contains any errors.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the validation result contains any warnings.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// IsValid returns true if there are no errors (warnings are acceptable).
func (r ValidationResult) IsValid() bool {
	return !r.HasErrors()
}
