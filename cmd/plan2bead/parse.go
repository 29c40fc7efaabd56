package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/plan2bead/internal/planning"
)

func newParseCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "parse <plan.md>",
		Short: "Show the issues a plan would create, without touching the tracker",
		Long: `Parse a plan and print the resulting task graph as YAML or JSON.
Parents are shown by title and line. Validation warnings go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := planning.Format(format)
			if !f.IsValid() {
				return fmt.Errorf("invalid --format %q (want yaml or json)", format)
			}

			tasks, err := readPlan(args[0])
			if err != nil {
				return err
			}
			printValidation(cmd.ErrOrStderr(), planning.DefaultValidators(false).ValidateAll(cmd.Context(), tasks))

			data, err := planning.Export(tasks, args[0], f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := planning.WriteExport(output, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %d tasks to %s\n", green("✓"), len(tasks), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(planning.FormatYAML), "output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}
