package planning

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/plan2bead/internal/types"
)

// DuplicateTitleDetector flags tasks that share a title. The creator keeps one
// identifier per title, so only the last one created stays addressable by
// title. Near-identical titles are reported at a lower severity.
type DuplicateTitleDetector struct{}

// Name returns the validator identifier.
func (d *DuplicateTitleDetector) Name() string {
	return "duplicate_titles"
}

// Priority returns 10 (runs after structural checks).
func (d *DuplicateTitleDetector) Priority() int {
	return 10
}

// Validate checks for exact and near duplicate titles.
func (d *DuplicateTitleDetector) Validate(ctx context.Context, tasks []*types.Task) ValidationResult {
	result := ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]ValidationWarning, 0),
	}

	firstSeen := make(map[string]*types.Task)
	for _, task := range tasks {
		if prev, ok := firstSeen[task.Title]; ok {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code: "DUPLICATE_TITLE",
				Message: fmt.Sprintf("%q appears on lines %d and %d; the later bead replaces the earlier one in the title map",
					task.Title, prev.Line, task.Line),
				Location: fmt.Sprintf("line %d", task.Line),
				Severity: WarningSeverityHigh,
			})
			continue
		}
		firstSeen[task.Title] = task
	}

	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			a, b := tasks[i], tasks[j]
			if a.Title == b.Title || a.Type == types.TypeEpic || b.Type == types.TypeEpic {
				continue
			}
			similarity := jaccardSimilarity(tokenize(a.Title), tokenize(b.Title))
			if similarity >= 0.8 {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Code: "SIMILAR_TITLE",
					Message: fmt.Sprintf("%q (line %d) and %q (line %d) look alike (%.0f%% match)",
						a.Title, a.Line, b.Title, b.Line, similarity*100),
					Location: fmt.Sprintf("line %d", b.Line),
					Severity: WarningSeverityLow,
				})
			}
		}
	}

	return result
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
}

// tokenize converts text into a set of normalized words.
func tokenize(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})

	wordSet := make(map[string]bool)
	for _, word := range words {
		if len(word) > 2 && !stopWords[word] {
			wordSet[word] = true
		}
	}
	return wordSet
}

// jaccardSimilarity returns intersection size / union size of two word sets.
func jaccardSimilarity(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for word := range set1 {
		if set2[word] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection

	return float64(intersection) / float64(union)
}
