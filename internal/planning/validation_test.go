package planning

import (
	"context"
	"testing"

	"github.com/steveyegge/plan2bead/internal/types"
)

// mockValidator is a simple test validator.
type mockValidator struct {
	name     string
	priority int
	errors   []ValidationError
	warnings []ValidationWarning
}

func (m *mockValidator) Name() string  { return m.name }
func (m *mockValidator) Priority() int { return m.priority }
func (m *mockValidator) Validate(ctx context.Context, tasks []*types.Task) ValidationResult {
	return ValidationResult{
		Errors:   m.errors,
		Warnings: m.warnings,
	}
}

func TestValidatorRegistry_Register(t *testing.T) {
	registry := NewValidatorRegistry()

	// Register validators in random order
	v3 := &mockValidator{name: "third", priority: 100}
	v1 := &mockValidator{name: "first", priority: 1}
	v2 := &mockValidator{name: "second", priority: 10}

	registry.Register(v3)
	registry.Register(v1)
	registry.Register(v2)

	got := registry.Validators()
	if len(got) != 3 {
		t.Fatalf("expected 3 validators, got %d", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Name() != want {
			t.Errorf("validator %d: expected %q, got %q", i, want, got[i].Name())
		}
	}
}

func TestDefaultValidators(t *testing.T) {
	got := DefaultValidators(false).Validators()
	want := []string{"cycle_detector", "duplicate_titles", "numbered_references"}
	if len(got) != len(want) {
		t.Fatalf("expected %d validators, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name() != want[i] {
			t.Errorf("validator %d: expected %q, got %q", i, want[i], got[i].Name())
		}
	}
}

func TestValidatorRegistry_ValidateAll(t *testing.T) {
	registry := NewValidatorRegistry()

	registry.Register(&mockValidator{
		name:     "v1",
		priority: 1,
		errors:   []ValidationError{{Code: "E1", Message: "Error from v1"}},
	})
	registry.Register(&mockValidator{
		name:     "v2",
		priority: 2,
		warnings: []ValidationWarning{{Code: "W1", Message: "Warning from v2"}},
	})
	registry.Register(&mockValidator{
		name:     "v3",
		priority: 3,
		errors:   []ValidationError{{Code: "E2", Message: "Error from v3"}},
		warnings: []ValidationWarning{{Code: "W2", Message: "Warning from v3"}},
	})

	result := registry.ValidateAll(context.Background(), nil)

	if len(result.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d", len(result.Warnings))
	}
	if result.Errors[0].Code != "E1" || result.Errors[1].Code != "E2" {
		t.Errorf("errors not collected in priority order: %+v", result.Errors)
	}
	if !result.HasErrors() {
		t.Error("expected HasErrors() to be true")
	}
	if !result.HasWarnings() {
		t.Error("expected HasWarnings() to be true")
	}
	if result.IsValid() {
		t.Error("expected IsValid() to be false when errors present")
	}
}

func TestValidationResult_Helpers(t *testing.T) {
	tests := []struct {
		name         string
		result       ValidationResult
		wantHasErrs  bool
		wantHasWarns bool
		wantValid    bool
	}{
		{
			name:      "empty result",
			wantValid: true,
		},
		{
			name:         "only warnings",
			result:       ValidationResult{Warnings: []ValidationWarning{{Code: "W1"}}},
			wantHasWarns: true,
			wantValid:    true,
		},
		{
			name:        "only errors",
			result:      ValidationResult{Errors: []ValidationError{{Code: "E1"}}},
			wantHasErrs: true,
		},
		{
			name: "both",
			result: ValidationResult{
				Errors:   []ValidationError{{Code: "E1"}},
				Warnings: []ValidationWarning{{Code: "W1"}},
			},
			wantHasErrs:  true,
			wantHasWarns: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.HasErrors(); got != tt.wantHasErrs {
				t.Errorf("HasErrors() = %v, want %v", got, tt.wantHasErrs)
			}
			if got := tt.result.HasWarnings(); got != tt.wantHasWarns {
				t.Errorf("HasWarnings() = %v, want %v", got, tt.wantHasWarns)
			}
			if got := tt.result.IsValid(); got != tt.wantValid {
				t.Errorf("IsValid() = %v, want %v", got, tt.wantValid)
			}
		})
	}
}

func TestWarningSeverity_String(t *testing.T) {
	tests := []struct {
		severity WarningSeverity
		want     string
	}{
		{WarningSeverityLow, "LOW"},
		{WarningSeverityMedium, "MEDIUM"},
		{WarningSeverityHigh, "HIGH"},
		{WarningSeverity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("WarningSeverity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestDuplicateTitleDetector(t *testing.T) {
	tasks := Parse(`## Auth
- [ ] Add login form
- [ ] Add login form
- [ ] Refresh expired session tokens
- [ ] Refresh expired session tokens quickly
## Auth
`)

	result := (&DuplicateTitleDetector{}).Validate(context.Background(), tasks)

	codes := map[string]int{}
	for _, w := range result.Warnings {
		codes[w.Code]++
	}
	// "Auth" twice and "Add login form" twice
	if codes["DUPLICATE_TITLE"] != 2 {
		t.Errorf("expected 2 DUPLICATE_TITLE warnings, got %d: %+v", codes["DUPLICATE_TITLE"], result.Warnings)
	}
	if codes["SIMILAR_TITLE"] != 1 {
		t.Errorf("expected 1 SIMILAR_TITLE warning, got %d: %+v", codes["SIMILAR_TITLE"], result.Warnings)
	}
	if result.HasErrors() {
		t.Errorf("duplicate detection must not produce errors, got %+v", result.Errors)
	}
}

func TestNumberedReferenceChecker(t *testing.T) {
	tasks := Parse(`1. Setup
2. depends on: 1 → Build
3. depends on: 7 → Ship
`)

	result := (&NumberedReferenceChecker{}).Validate(context.Background(), tasks)

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %+v", len(result.Warnings), result.Warnings)
	}
	w := result.Warnings[0]
	if w.Code != "UNRESOLVED_REFERENCE" || w.Location != "line 3" || w.Severity != WarningSeverityMedium {
		t.Errorf("unexpected warning: %+v", w)
	}
}
