package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/plan2bead/internal/config"
	"github.com/steveyegge/plan2bead/internal/creator"
	"github.com/steveyegge/plan2bead/internal/journal"
	"github.com/steveyegge/plan2bead/internal/logging"
	"github.com/steveyegge/plan2bead/internal/planning"
	"github.com/steveyegge/plan2bead/internal/prompt"
	"github.com/steveyegge/plan2bead/internal/tracker"
	"github.com/steveyegge/plan2bead/internal/types"
)

// rootOptions holds flags that are not routed through viper.
type rootOptions struct {
	cfgFile     string
	verbose     bool
	dryRun      bool
	noFlush     bool
	interactive bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "plan2bead <plan.md>",
		Short: "Create beads issues from a markdown plan",
		Long: `Parse a markdown plan and create one beads issue per section, checkbox
and numbered item.

Sections (## headers) become epics. Top-level checkboxes and numbered items
depend on their section; nested checkboxes depend on the checkbox above them.
Priorities ([P0]..[P4], CRITICAL, HIGH, ...) and labels ([tag], #tag, tag:)
are read from each line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, v, opts, args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is ./plan2bead.yaml or $XDG_CONFIG_HOME/plan2bead/plan2bead.yaml)")
	pf.BoolVar(&opts.verbose, "verbose", false, "write debug logs to stderr")
	pf.String("log-file", "", "write JSON debug logs to this file")
	pf.String("journal", "", "record tracker calls in this SQLite journal")
	_ = v.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = v.BindPFlag("journal.path", pf.Lookup("journal"))

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "print tracker commands instead of running them")
	f.BoolVar(&opts.noFlush, "no-flush", false, "skip the final sync")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "ask before creating issues")
	f.Bool("link-numbered", false, `turn "N. depends on: M" lines into dependency edges`)
	f.Duration("throttle", 0, "minimum time between tracker calls")
	f.Duration("timeout", 0, "maximum time for each tracker call")
	_ = v.BindPFlag("plan.link_numbered", f.Lookup("link-numbered"))
	_ = v.BindPFlag("tracker.throttle", f.Lookup("throttle"))
	_ = v.BindPFlag("tracker.timeout", f.Lookup("timeout"))

	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newJournalCmd(v, opts))

	return cmd
}

func loadConfig(v *viper.Viper, opts *rootOptions) (*config.Config, error) {
	if err := config.Init(v, opts.cfgFile); err != nil {
		return nil, err
	}
	return config.Load(v)
}

func newLogger(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) (*logging.Logger, error) {
	level := cfg.Log.Level
	if opts.verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Options{
		File:    cfg.Log.File,
		Verbose: opts.verbose,
		Level:   level,
		Stderr:  cmd.ErrOrStderr(),
	})
}

// readPlan loads and parses the plan at path.
func readPlan(path string) ([]*types.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("plan file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return planning.Parse(string(data)), nil
}

func runCreate(cmd *cobra.Command, v *viper.Viper, opts *rootOptions, path string) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := loadConfig(v, opts)
	if err != nil {
		return err
	}
	if opts.noFlush {
		cfg.Tracker.Flush = false
	}

	logger, err := newLogger(cmd, cfg, opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	tasks, err := readPlan(path)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No beads found in plan")
		return nil
	}
	fmt.Fprintf(out, "Found %d beads to create\n", len(tasks))

	printValidation(errOut, planning.DefaultValidators(cfg.Plan.LinkNumbered).ValidateAll(ctx, tasks))

	runID := journal.NewRunID()
	logger = logger.WithRun(runID)
	logger.Info("starting run", "plan", path, "tasks", len(tasks), "dry_run", opts.dryRun, "config", cfg.String())

	if opts.interactive && !opts.dryRun {
		question := fmt.Sprintf("Create %d beads with %s?", len(tasks), cfg.Tracker.Command)
		ok, err := prompt.Confirm(question, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var client tracker.Client
	if opts.dryRun {
		client = tracker.NewRecorder(cfg.Tracker.Command, out)
	} else {
		client = tracker.NewCLI(cfg.Tracker.Command, logger)
	}
	client = tracker.NewTimeout(client, cfg.Tracker.Timeout)

	if cfg.Journal.Path != "" {
		store, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal unavailable", "path", cfg.Journal.Path, "error", err)
			fmt.Fprintf(errOut, "%s journal disabled: %v\n", yellow("⚠"), err)
		} else {
			defer func() { _ = store.Close() }()
			client = journal.Wrap(client, store, runID, logger)
			fmt.Fprintf(out, "Journal run: %s\n", runID)
		}
	}

	client = tracker.NewThrottled(client, cfg.Tracker.Throttle)

	started := time.Now()
	result := creator.New(client, out, errOut, logger, creator.Options{
		Flush:        cfg.Tracker.Flush,
		DryRun:       opts.dryRun,
		LinkNumbered: cfg.Plan.LinkNumbered,
	}).Run(ctx, tasks)

	logger.Info("run finished",
		"created", result.Created,
		"failed", result.Failed,
		"edges", result.Edges+result.NumberedEdges,
		"labeled", result.Labeled,
		"duration", time.Since(started))
	printSummary(out, len(tasks), result, opts.dryRun)

	if result.Err != nil {
		return fmt.Errorf("run interrupted: %w", result.Err)
	}
	return nil
}
