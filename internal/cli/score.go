package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Kavirubc/gh-riskradar/internal/github"
	"github.com/Kavirubc/gh-riskradar/internal/processor"
	"github.com/Kavirubc/gh-riskradar/internal/risk"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

type scoreOptions struct {
	ref       string
	repo      string
	number    int
	eventPath string
	file      string
	format    string
	comment   bool
	label     bool

	pr models.PRRecord
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a pull request for review risk",
		Long: `Score a pull request fetched from GitHub, read from a JSON/YAML file or
described with flags.

Examples:
  gh riskradar score --ref owner/repo#123
  gh riskradar score --repo owner/repo --pr 123 --format markdown --comment
  gh riskradar score --event $GITHUB_EVENT_PATH --comment
  gh riskradar score --file pr.json
  gh riskradar score --title "Fix login" --additions 12 --deletions 3 --changed-files 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.ref, "ref", "", "pull request as owner/repo#number or URL")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "repository (owner/repo)")
	cmd.Flags().IntVar(&opts.number, "pr", 0, "pull request number")
	cmd.Flags().StringVar(&opts.eventPath, "event", "", "GitHub Actions event file (pull_request)")
	cmd.Flags().StringVar(&opts.file, "file", "", "PR record file (.json, .yaml)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json, markdown")
	cmd.Flags().BoolVar(&opts.comment, "comment", false, "post or update the markdown report on the pull request")
	cmd.Flags().BoolVar(&opts.label, "label", false, "set a risk:<level> label on the pull request")

	cmd.Flags().StringVar(&opts.pr.Title, "title", "", "PR title")
	cmd.Flags().StringVar(&opts.pr.Description, "description", "", "PR description")
	cmd.Flags().IntVar(&opts.pr.Additions, "additions", 0, "lines added")
	cmd.Flags().IntVar(&opts.pr.Deletions, "deletions", 0, "lines deleted")
	cmd.Flags().IntVar(&opts.pr.ChangedFiles, "changed-files", 0, "number of changed files")
	cmd.Flags().StringSliceVar(&opts.pr.Files, "files", nil, "changed file paths")

	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	switch opts.format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("unknown format %q (expected text, json or markdown)", opts.format)
	}

	ctx := cmd.Context()
	_, proc, logger, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var gh *github.Client
	pr, ref, err := resolvePR(ctx, cmd, opts, &gh)
	if err != nil {
		return err
	}
	if pr == nil {
		return nil
	}

	result, err := proc.ScorePR(ctx, *pr)
	if err != nil {
		return fmt.Errorf("failed to score pull request: %w", err)
	}
	suggestions := risk.Suggest(*pr, result)

	if err := writeResult(cmd.OutOrStdout(), opts.format, pr, result, suggestions); err != nil {
		return err
	}

	if !opts.comment && !opts.label {
		return nil
	}
	if ref == nil {
		return fmt.Errorf("--comment and --label need a GitHub pull request (--ref, --repo/--pr or --event)")
	}
	if dryRun {
		logger.Info("dry run, not updating pull request", zap.String("pr", ref.String()))
		return nil
	}

	if opts.comment {
		updated, err := gh.UpsertComment(ctx, ref.Owner, ref.Repo, ref.Number,
			processor.ReportMarker, processor.FormatRiskComment(result, suggestions))
		if err != nil {
			return err
		}
		logger.Info("risk report published", zap.String("pr", ref.String()), zap.Bool("updated", updated))
	}
	if opts.label {
		if err := gh.SetRiskLabel(ctx, ref.Owner, ref.Repo, ref.Number, string(result.RiskLevel)); err != nil {
			return err
		}
		logger.Info("risk label set", zap.String("pr", ref.String()), zap.String("level", string(result.RiskLevel)))
	}
	return nil
}

// resolvePR builds the record to score from the first source given. A nil
// record with no error means there is nothing to score.
func resolvePR(ctx context.Context, cmd *cobra.Command, opts *scoreOptions, gh **github.Client) (*models.PRRecord, *github.PRRef, error) {
	var ref *github.PRRef

	switch {
	case opts.eventPath != "":
		event, err := github.ParseEventFile(opts.eventPath)
		if err != nil {
			return nil, nil, err
		}
		if !event.IsPullRequestEvent() || !event.ShouldScore() {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %q is not a scorable pull_request event\n", event.Action)
			return nil, nil, nil
		}
		r, err := event.Ref()
		if err != nil {
			return nil, nil, err
		}
		ref = &r

	case opts.ref != "":
		r, err := github.ParsePRRef(opts.ref)
		if err != nil {
			return nil, nil, err
		}
		ref = &r

	case opts.repo != "":
		owner, repo, err := github.ParseRepo(opts.repo)
		if err != nil {
			return nil, nil, err
		}
		if opts.number < 1 {
			return nil, nil, fmt.Errorf("--pr is required with --repo")
		}
		ref = &github.PRRef{Owner: owner, Repo: repo, Number: opts.number}

	case opts.file != "":
		pr, err := readPRFile(opts.file)
		return pr, nil, err

	default:
		if strings.TrimSpace(opts.pr.Title) == "" && strings.TrimSpace(opts.pr.Description) == "" {
			return nil, nil, fmt.Errorf("nothing to score: pass --ref, --repo/--pr, --event, --file or --title")
		}
		pr := opts.pr
		if pr.ChangedFiles == 0 {
			pr.ChangedFiles = len(pr.Files)
		}
		return &pr, nil, nil
	}

	client, err := github.NewClient()
	if err != nil {
		return nil, nil, err
	}
	*gh = client

	pr, err := client.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, nil, err
	}
	return pr, ref, nil
}

// readPRFile decodes a PR record from JSON, or YAML for .yaml/.yml files
func readPRFile(path string) (*models.PRRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PR file: %w", err)
	}

	var pr models.PRRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pr)
	default:
		err = json.Unmarshal(data, &pr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse PR file: %w", err)
	}
	return &pr, nil
}

func writeResult(w io.Writer, format string, pr *models.PRRecord, result *models.RiskResult, suggestions []string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*models.RiskResult
			Suggestions []string `json:"suggestions,omitempty"`
		}{result, suggestions})

	case "markdown":
		_, err := fmt.Fprintln(w, processor.FormatRiskComment(result, suggestions))
		return err
	}

	fmt.Fprintf(w, "Risk: %.2f (%s)  model=%s corpus=%d\n", result.RiskScore, result.RiskLevel, result.ModelID, result.CorpusSizeUsed)
	fmt.Fprintf(w, "PR:   %s (+%d/-%d, %d files)\n", pr.Title, pr.Additions, pr.Deletions, pr.ChangedFiles)

	if len(result.SimilarPRs) > 0 {
		fmt.Fprintln(w, "\nSimilar changes:")
		for i, m := range result.SimilarPRs {
			title := m.Title
			if title == "" {
				title = m.SourceID
			}
			fmt.Fprintf(w, "%d. %s\n   %s | %s | Similarity: %.1f%%\n", i+1, title, m.QualityLabel, m.Origin, m.Similarity*100)
		}
	}

	if len(suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}
