package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/plan2bead/internal/journal"
)

func newJournalCmd(v *viper.Viper, opts *rootOptions) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded tracker calls",
		Long: `List recent runs from the call journal, or every call of one run with --run.
The journal is written when --journal (or journal.path) is set during a run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, opts)
			if err != nil {
				return err
			}
			if cfg.Journal.Path == "" {
				return fmt.Errorf("no journal configured (use --journal or journal.path)")
			}

			store, err := journal.Open(cmd.Context(), cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()

			if runID != "" {
				entries, err := store.Entries(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintf(out, "No calls recorded for run %s\n", runID)
					return nil
				}
				for _, e := range entries {
					status := green("ok")
					if !e.OK {
						status = red("failed")
					}
					fmt.Fprintf(out, "%s %-6s %-14s %s %s %s\n",
						e.CreatedAt.Local().Format("15:04:05"),
						e.Kind,
						e.IssueID,
						status,
						gray(e.Duration.String()),
						strings.Join(e.Args, " "),
					)
					if e.Error != "" {
						fmt.Fprintf(out, "  %s %s\n", gray("└─"), e.Error)
					}
				}
				return nil
			}

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			for _, r := range runs {
				failures := gray("0 failed")
				if r.Failures > 0 {
					failures = red(fmt.Sprintf("%d failed", r.Failures))
				}
				fmt.Fprintf(out, "%s  %s  %d calls, %s\n",
					r.RunID,
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Calls,
					failures,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "show the calls of this run")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to list (0 = all)")

	return cmd
}
