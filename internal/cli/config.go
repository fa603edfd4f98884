package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Kavirubc/gh-riskradar/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			fmt.Fprintf(out, "Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Fprintln(out, "\nValidation errors:")
				for _, e := range errs {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			fmt.Fprintln(out, "\nConfiguration is valid!")
			fmt.Fprintf(out, "  - Storage: %s (%s)\n", cfg.Storage.Backend, storageLocation(cfg))
			fmt.Fprintf(out, "  - Vectorizer: %d dimensions\n", cfg.Vectorizer.Dimensions)
			fmt.Fprintf(out, "  - Scoring: prior %.2f, top_k %d\n", cfg.Scoring.Prior, cfg.Scoring.TopK)
			fmt.Fprintf(out, "  - Team learning: %s\n", enabled(!cfg.Learning.Disabled))
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with defaults applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(config.FindConfigPath(cfgFile))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Storage.Qdrant.APIKey != "" {
				cfg.Storage.Qdrant.APIKey = "********"
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

func storageLocation(cfg *config.Config) string {
	switch cfg.Storage.Backend {
	case "qdrant":
		return cfg.Storage.Qdrant.URL + "/" + cfg.Storage.Qdrant.Collection
	case "memory":
		return "in-memory"
	default:
		return cfg.Storage.Path
	}
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
