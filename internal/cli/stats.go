package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus sizes and benchmark stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, proc, _, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sum := proc.Summary(ctx)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}

			fmt.Fprintf(out, "Initialized: %t\n", sum.Initialized)
			fmt.Fprintf(out, "  - Quality: %d\n  - Risky: %d\n  - Team: %d\n", sum.QualityCount, sum.RiskyCount, sum.TeamCount)
			if len(sum.Unavailable) > 0 {
				fmt.Fprintf(out, "  - Unavailable: %s\n", strings.Join(sum.Unavailable, ", "))
			}
			if b := sum.Benchmark; b != nil {
				fmt.Fprintf(out, "\nBenchmark (%d quality PRs):\n", b.SampleSize)
				fmt.Fprintf(out, "  - Avg additions: %.1f\n", b.AvgAdditions)
				fmt.Fprintf(out, "  - Avg deletions: %.1f\n", b.AvgDeletions)
				fmt.Fprintf(out, "  - Avg changed files: %.1f\n", b.AvgChangedFiles)
				fmt.Fprintf(out, "  - Avg title length: %.1f\n", b.AvgTitleLength)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
