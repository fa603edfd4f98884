package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the seed corpus to storage",
		Long: `Write the seed quality and risky collections and their benchmark stats.
Running it again is a no-op unless --force is given, which rewrites the seed
collections and keeps the team history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, proc, _, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "[DRY RUN] No changes will be made")
			}

			if force {
				if err := proc.Reseed(ctx); err != nil {
					return err
				}
				if !dryRun {
					fmt.Fprintln(out, "Seed corpus rewritten")
				}
			} else {
				created, err := proc.InitializeCorpus(ctx)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintln(out, "Seed corpus initialized")
				} else {
					fmt.Fprintln(out, "Seed corpus already present")
				}
			}

			sum := proc.Summary(ctx)
			fmt.Fprintf(out, "  - Quality: %d\n  - Risky: %d\n  - Team: %d\n", sum.QualityCount, sum.RiskyCount, sum.TeamCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rewrite the seed collections even if present")
	return cmd
}
