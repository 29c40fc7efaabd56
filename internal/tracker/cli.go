package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/steveyegge/plan2bead/internal/logging"
)

// CLI implements Client by spawning the tracker binary once per call.
type CLI struct {
	commands Commands
	dir      string
	logger   *logging.Logger
}

// NewCLI creates a CLI client for binary ("br" when empty). Commands run in
// the current working directory so the tracker finds its .beads/ store.
func NewCLI(binary string, logger *logging.Logger) *CLI {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &CLI{
		commands: Commands{Binary: binary},
		logger:   logger,
	}
}

// WithDir returns a copy of the client that runs commands in dir.
func (c *CLI) WithDir(dir string) *CLI {
	cp := *c
	cp.dir = dir
	return &cp
}

// Create runs "br create" and scrapes the new identifier from stdout.
func (c *CLI) Create(ctx context.Context, req CreateRequest) (string, error) {
	out, err := c.run(ctx, c.commands.Create(req))
	if err != nil {
		return "", err
	}
	id, ok := ParseID(out)
	if !ok {
		return "", fmt.Errorf("create %q: %w", req.Title, ErrNoIdentifier)
	}
	return id, nil
}

// AddDependency runs "br dep add".
func (c *CLI) AddDependency(ctx context.Context, issueID, dependsOnID string) error {
	_, err := c.run(ctx, c.commands.AddDependency(issueID, dependsOnID))
	return err
}

// AddLabels runs "br label add".
func (c *CLI) AddLabels(ctx context.Context, issueID string, labels []string) error {
	_, err := c.run(ctx, c.commands.AddLabels(issueID, labels))
	return err
}

// Flush runs "br sync --flush-only".
func (c *CLI) Flush(ctx context.Context) error {
	_, err := c.run(ctx, c.commands.Flush())
	return err
}

// run executes argv and returns stdout. A non-zero exit or a failure to start
// the process is reported as *CommandError.
func (c *CLI) run(ctx context.Context, argv []string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		c.logger.Debug("tracker command failed",
			"command", FormatCommand(argv),
			"exit_code", exitCode,
			"stderr", stderr.String(),
			"duration", elapsed)
		return "", &CommandError{
			Args:     argv,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	c.logger.Debug("tracker command finished",
		"command", FormatCommand(argv),
		"duration", elapsed)
	return stdout.String(), nil
}
