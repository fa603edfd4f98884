package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kavirubc/gh-riskradar/internal/config"
	"github.com/Kavirubc/gh-riskradar/internal/logging"
	"github.com/Kavirubc/gh-riskradar/internal/processor"
)

var (
	cfgFile  string
	dryRun   bool
	logLevel string
	version  = "dev"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gh-riskradar",
		Short: "Pull request risk scoring",
		Long: `gh-riskradar scores pull requests for review risk by comparing them with
a labelled corpus of quality and risky changes, plus the repository's own
history of scored PRs.

Scores combine TF cosine similarity with size, spread and title heuristics
measured against the corpus averages.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "skip all writes (corpus, team learning, GitHub comments)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the CLI until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gh-riskradar version %s\n", version)
		},
	}
}

// loadConfig finds, loads and validates the config. Without a config file
// the defaults are used.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(config.FindConfigPath(cfgFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}
	return cfg, nil
}

// setup loads config and builds the logger and processor shared by the
// commands. The returned cleanup flushes team learning and closes storage.
func setup(ctx context.Context) (*config.Config, *processor.Processor, *zap.Logger, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	proc, err := processor.NewProcessor(ctx, cfg, dryRun, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		if err := proc.Close(context.Background()); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return cfg, proc, logger, cleanup, nil
}
