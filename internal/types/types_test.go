package types

import (
	"strings"
	"testing"
)

func TestTaskValidate(t *testing.T) {
	epic := &Task{Title: "Backend", Type: TypeEpic, Priority: 1}

	tests := []struct {
		name    string
		task    Task
		wantErr string
	}{
		{
			name: "valid task",
			task: Task{Title: "Write tests", Type: TypeTask, Priority: 2, Labels: []string{"qa", "unit_test"}},
		},
		{
			name: "valid nested bug",
			task: Task{Title: "Fix login", Type: TypeBug, Priority: 0, Parent: epic},
		},
		{
			name:    "empty title",
			task:    Task{Type: TypeTask, Priority: 2},
			wantErr: "title is required",
		},
		{
			name:    "title too long",
			task:    Task{Title: strings.Repeat("x", 501), Type: TypeTask, Priority: 2},
			wantErr: "500 characters",
		},
		{
			name:    "priority below range",
			task:    Task{Title: "t", Type: TypeTask, Priority: -1},
			wantErr: "priority must be between 0 and 4",
		},
		{
			name:    "priority above range",
			task:    Task{Title: "t", Type: TypeTask, Priority: 5},
			wantErr: "priority must be between 0 and 4",
		},
		{
			name:    "unknown type",
			task:    Task{Title: "t", Type: "feature", Priority: 2},
			wantErr: "invalid issue type",
		},
		{
			name:    "uppercase label",
			task:    Task{Title: "t", Type: TypeTask, Priority: 2, Labels: []string{"Backend"}},
			wantErr: "invalid label",
		},
		{
			name:    "epic with parent",
			task:    Task{Title: "Nested", Type: TypeEpic, Priority: 2, Parent: epic},
			wantErr: "cannot have a parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTaskHelpers(t *testing.T) {
	parent := &Task{Title: "Backend", Type: TypeEpic, Priority: 1}
	child := &Task{Title: "Fix login bug", Type: TypeBug, Priority: 1, Parent: parent}

	if got := child.ParentTitle(); got != "Backend" {
		t.Errorf("ParentTitle() = %q, want %q", got, "Backend")
	}
	if got := parent.ParentTitle(); got != "" {
		t.Errorf("ParentTitle() on root = %q, want empty", got)
	}
	if child.Created() {
		t.Error("Created() should be false before an ID is assigned")
	}
	child.ID = "br-a1b2"
	if !child.Created() {
		t.Error("Created() should be true after an ID is assigned")
	}
	if got := child.String(); got != "[P1 bug] Fix login bug" {
		t.Errorf("String() = %q", got)
	}
}

func TestIsValidLabel(t *testing.T) {
	for _, l := range []string{"backend", "p1", "needs-review", "unit_test"} {
		if !IsValidLabel(l) {
			t.Errorf("IsValidLabel(%q) = false, want true", l)
		}
	}
	for _, l := range []string{"", "Backend", "has space", "colon:", "#hash"} {
		if IsValidLabel(l) {
			t.Errorf("IsValidLabel(%q) = true, want false", l)
		}
	}
}
