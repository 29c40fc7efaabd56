package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/steveyegge/plan2bead/internal/creator"
	"github.com/steveyegge/plan2bead/internal/planning"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// printValidation lists plan problems. They are advisory; the run goes on.
func printValidation(w io.Writer, result planning.ValidationResult) {
	for _, e := range result.Errors {
		fmt.Fprintf(w, "%s %s: %s %s\n", red("✗"), e.Code, e.Message, gray("("+e.Location+")"))
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "%s %s [%s]: %s %s\n", yellow("⚠"), warn.Code, warn.Severity, warn.Message, gray("("+warn.Location+")"))
	}
}

func printSummary(w io.Writer, total int, r *creator.Result, dryRun bool) {
	mark := green("✓")
	if !r.OK() {
		mark = yellow("⚠")
	}

	title := "Summary"
	if dryRun {
		title = "Dry run summary (nothing was created)"
	}
	fmt.Fprintf(w, "\n%s\n", cyan(title))
	fmt.Fprintf(w, "%s Beads: %d/%d created", mark, r.Created, total)
	if r.Failed > 0 {
		fmt.Fprintf(w, ", %s", red(fmt.Sprintf("%d failed", r.Failed)))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s Dependencies: %d", gray("├─"), r.Edges)
	if r.NumberedEdges > 0 || r.SkippedCycles > 0 {
		fmt.Fprintf(w, " (+%d numbered, %d skipped as cyclic)", r.NumberedEdges, r.SkippedCycles)
	}
	if r.EdgeFailures > 0 {
		fmt.Fprintf(w, ", %s", red(fmt.Sprintf("%d failed", r.EdgeFailures)))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s Labels: %d", gray("└─"), r.Labeled)
	if r.LabelFailures > 0 {
		fmt.Fprintf(w, ", %s", red(fmt.Sprintf("%d failed", r.LabelFailures)))
	}
	fmt.Fprintln(w)
}
