package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the corpus for similar changes (debugging/testing)",
		Long:  `Rank quality, risky and team documents by TF cosine similarity to the given text.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, proc, _, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := proc.Similar(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No similar changes found")
				return nil
			}

			fmt.Fprintf(out, "Found %d similar changes:\n\n", len(results))
			for i, m := range results {
				fmt.Fprintf(out, "%d. %s - %s\n", i+1, m.SourceID, m.Title)
				fmt.Fprintf(out, "   Label: %s | Source: %s | Similarity: %.1f%%\n\n", m.QualityLabel, m.Origin, m.Similarity*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results to return")
	return cmd
}
