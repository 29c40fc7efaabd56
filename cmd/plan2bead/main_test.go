package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendPlan = "## Backend [P1]\n- [ ] Fix login bug #security\n  - [ ] Write unit test\n"

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// run executes the CLI with empty standard input.
func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, input string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, strings.NewReader(input), &out, &errOut)
	return out.String(), errOut.String(), code
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writePlan(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "plan.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDryRun(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, backendPlan)

	stdout, stderr, code := run(t, plan, "--dry-run")

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Found 3 beads to create\n")
	assert.Contains(t, stdout, `DRY RUN: br create Backend --type epic --priority 1 --description "Epic: Backend"`)
	assert.Contains(t, stdout, `DRY RUN: br dep add "dry-run-Write un" "dry-run-Fix logi"`)
	assert.Contains(t, stdout, `DRY RUN: br label add "dry-run-Fix logi" security`)
	assert.Equal(t, 6, strings.Count(stdout, "DRY RUN:"), "one line per would-be call, no sync")
	assert.NotContains(t, stdout, "Beads synced successfully")
	assert.Contains(t, stdout, "Beads: 3/3 created")
}

func TestMissingPlanFile(t *testing.T) {
	dir := isolate(t)

	_, stderr, code := run(t, filepath.Join(dir, "absent.md"))

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: plan file not found: ")
}

func TestEmptyPlan(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, "# Notes\n\nJust prose.\n")

	stdout, _, code := run(t, plan, "--dry-run")

	assert.Equal(t, 0, code)
	assert.Equal(t, "No beads found in plan\n", stdout)
}

func TestRequiresPlanArgument(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "accepts 1 arg(s)")
}

func TestValidationWarningsDoNotStopRun(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, "- [ ] Same thing\n- [ ] Same thing\n2. depends on: 9 → Orphan\n")

	stdout, stderr, code := run(t, plan, "--dry-run")

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "DUPLICATE_TITLE")
	assert.Contains(t, stderr, "UNRESOLVED_REFERENCE")
	assert.Equal(t, 3, strings.Count(stdout, "DRY RUN: br create"))
}

func TestNumberedCycleSeverity(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, "1. depends on: 2 → Ping\n2. depends on: 1 → Pong\n")

	_, stderr, code := run(t, plan, "--dry-run")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "⚠ NUMBERED_CYCLE_DETECTED [LOW]")
	assert.NotContains(t, stderr, "✗")

	_, stderr, code = run(t, plan, "--dry-run", "--link-numbered")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "✗ NUMBERED_CYCLE_DETECTED")
}

func TestConfigFileSelectsTrackerCommand(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, "- [ ] Only task\n")
	cfg := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("tracker:\n  command: bd\n"), 0644))

	stdout, _, code := run(t, plan, "--dry-run", "--config", cfg)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `DRY RUN: bd create "Only task" --type task --priority 2`)
}

func TestInvalidConfigFails(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, backendPlan)
	t.Setenv("PLAN2BEAD_LOG_LEVEL", "loud")

	_, stderr, code := run(t, plan, "--dry-run")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "log.level")
}

// fakeTracker stands in for br: every call is appended to $FAKE_BR_LOG and
// create prints a fresh identifier.
const fakeTracker = `#!/bin/sh
echo "$*" >> "$FAKE_BR_LOG"
if [ "$1" = "create" ]; then
  n=$(wc -l < "$FAKE_BR_LOG" | tr -d ' ')
  echo "✓ Created issue: br-a$n"
fi
exit 0
`

func installFakeTracker(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tracker is a shell script")
	}
	bin := filepath.Join(dir, "fake-br")
	require.NoError(t, os.WriteFile(bin, []byte(fakeTracker), 0755))
	logPath := filepath.Join(dir, "calls.log")
	t.Setenv("FAKE_BR_LOG", logPath)
	t.Setenv("PLAN2BEAD_TRACKER_COMMAND", bin)
	return logPath
}

func TestCreateAgainstTracker(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, backendPlan)
	logPath := installFakeTracker(t, dir)

	stdout, stderr, code := run(t, plan)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Beads synced successfully. Run: git add .beads/ && git commit -m 'Add beads from plan'")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"create Backend --type epic --priority 1 --description Epic: Backend",
		"create Fix login bug --type bug --priority 1",
		"create Write unit test --type task --priority 1",
		"dep add br-a2 br-a1",
		"dep add br-a3 br-a2",
		"label add br-a2 security",
		"sync --flush-only",
	}, strings.Split(strings.TrimSpace(string(data)), "\n"))
}

func TestNoFlush(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, "- [ ] Only task\n")
	logPath := installFakeTracker(t, dir)

	stdout, _, code := run(t, plan, "--no-flush")

	assert.Equal(t, 0, code)
	assert.NotContains(t, stdout, "Beads synced successfully")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sync")
}

func TestInteractiveConfirmation(t *testing.T) {
	t.Run("yes creates", func(t *testing.T) {
		dir := isolate(t)
		plan := writePlan(t, dir, "- [ ] Only task\n")
		logPath := installFakeTracker(t, dir)

		stdout, _, code := runWithInput(t, "y\n", plan, "-i", "--no-flush")

		require.Equal(t, 0, code)
		assert.Contains(t, stdout, "Create 1 beads with "+filepath.Join(dir, "fake-br")+"? [y/N] ")
		assert.Contains(t, stdout, "Beads: 1/1 created")

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, "create Only task --type task --priority 2\n", string(data))
	})

	t.Run("no aborts without tracker calls", func(t *testing.T) {
		dir := isolate(t)
		plan := writePlan(t, dir, "- [ ] Only task\n")
		logPath := installFakeTracker(t, dir)

		stdout, _, code := runWithInput(t, "n\n", plan, "--interactive")

		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "? [y/N] ")
		assert.Contains(t, stdout, "Aborted.")
		assert.NotContains(t, stdout, "Summary")
		assert.NoFileExists(t, logPath)
	})

	t.Run("dry run never asks", func(t *testing.T) {
		dir := isolate(t)
		plan := writePlan(t, dir, "- [ ] Only task\n")

		stdout, _, code := runWithInput(t, "n\n", plan, "--dry-run", "-i")

		assert.Equal(t, 0, code)
		assert.NotContains(t, stdout, "[y/N]")
		assert.Contains(t, stdout, `DRY RUN: br create "Only task"`)
	})
}

func TestJournalRoundTrip(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, backendPlan)
	db := filepath.Join(dir, ".beads", "plan2bead.db")

	stdout, _, code := run(t, plan, "--dry-run", "--journal", db)
	require.Equal(t, 0, code)

	m := regexp.MustCompile(`Journal run: (\S+)`).FindStringSubmatch(stdout)
	require.Len(t, m, 2, stdout)
	runID := m[1]

	listing, _, code := run(t, "journal", "--journal", db)
	require.Equal(t, 0, code)
	assert.Contains(t, listing, runID)
	assert.Contains(t, listing, "6 calls, 0 failed")

	calls, _, code := run(t, "journal", "--journal", db, "--run", runID)
	require.Equal(t, 0, code)
	assert.Equal(t, 6, strings.Count(calls, " ok "))
	assert.Contains(t, calls, "dry-run-Backend")
}

func TestJournalRequiresPath(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t, "journal")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no journal configured")
}

func TestParseCommand(t *testing.T) {
	dir := isolate(t)
	plan := writePlan(t, dir, backendPlan)

	t.Run("json to stdout", func(t *testing.T) {
		stdout, _, code := run(t, "parse", plan, "--format", "json")
		require.Equal(t, 0, code)

		var got struct {
			Count int `json:"count"`
			Tasks []struct {
				Title  string `json:"title"`
				Parent string `json:"parent"`
			} `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, 3, got.Count)
		assert.Equal(t, "Fix login bug", got.Tasks[2].Parent)
	})

	t.Run("yaml to file", func(t *testing.T) {
		out := filepath.Join(dir, "plan.yaml")
		stdout, _, code := run(t, "parse", plan, "--output", out)
		require.Equal(t, 0, code)
		assert.Contains(t, stdout, "Wrote 3 tasks to "+out)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "title: Write unit test")
	})

	t.Run("bad format", func(t *testing.T) {
		_, stderr, code := run(t, "parse", plan, "--format", "xml")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "invalid --format")
	})
}
