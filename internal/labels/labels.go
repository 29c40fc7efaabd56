// Package labels extracts tracker labels from plan text and classifies task
// titles into issue types.
//
// Three tag families are recognized, all case-folded:
// - [backend]   bracketed tags
// - #security   hash tags
// - frontend:   colon-suffixed words
//
// The colon family matches any word directly before a colon, so prose such as
// "note: ..." also yields a label. That over-matching is intentional.
package labels

import (
	"regexp"
	"sort"
	"strings"

	"github.com/steveyegge/plan2bead/internal/types"
)

// LabelSpike marks investigation tasks ("spike" in the title)
const LabelSpike = "spike"

var (
	bracketTag = regexp.MustCompile(`\[([a-z0-9_-]+)\]`)
	hashTag    = regexp.MustCompile(`#([a-z0-9_-]+)`)
	colonTag   = regexp.MustCompile(`([a-z0-9_-]+):`)
)

// Extract returns the union of bracket, hash and colon tags in text,
// lowercased, deduplicated and sorted.
func Extract(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, re := range []*regexp.Regexp{bracketTag, hashTag, colonTag} {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			found = append(found, m[1])
		}
	}
	return Normalize(found)
}

// Normalize lowercases, drops invalid tokens, deduplicates and sorts labels.
// It returns nil for an empty result.
func Normalize(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = strings.ToLower(strings.TrimSpace(l))
		if !types.IsValidLabel(l) || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Merge combines label sets and normalizes the result.
func Merge(sets ...[]string) []string {
	var all []string
	for _, s := range sets {
		all = append(all, s...)
	}
	return Normalize(all)
}

// Classify decides the issue type of a list item from its title.
//
// Rules, first match wins:
// - contains "spike": task, plus the spike label
// - contains "bug" or "fix": bug
// - otherwise: task
//
// Section headers never go through Classify; they are always epics.
func Classify(title string) (types.IssueType, []string) {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "spike"):
		return types.TypeTask, []string{LabelSpike}
	case strings.Contains(lower, "bug"), strings.Contains(lower, "fix"):
		return types.TypeBug, nil
	default:
		return types.TypeTask, nil
	}
}
