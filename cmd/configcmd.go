package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/draftgen-cli/config"
)

// Config command flags.
var (
	configOutput string
	configForce  bool
)

// ConfigCommandDeps holds the dependencies for config commands.
type ConfigCommandDeps struct {
	LoadConfig func() (*config.Config, error)
}

// DefaultConfigDeps returns the default dependencies for production use.
func DefaultConfigDeps() *ConfigCommandDeps {
	return &ConfigCommandDeps{LoadConfig: config.LoadConfig}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(deps *ConfigCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultConfigDeps()
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage the draftgen configuration file.

Settings are read from ~/.draftgen/config.yaml and can be overridden
per-setting with DRAFTGEN_* environment variables.`,
	}

	cmd.AddCommand(newConfigShowCommand(deps))
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigShowCommand(deps *ConfigCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration after defaults, the config file,
and environment overrides are applied. The API key is never shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			format, err := resolveOutputFormat(configOutput, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case config.OutputFormatJSON:
				return renderJSON(out, cfg)
			default:
				return renderYAML(out, cfg)
			}
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().StringVarP(&configOutput, "output", "o", "", "output format: yaml (default), json")

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return fmt.Errorf("resolving config path: %w", err)
			}
			if _, err := os.Stat(path); err == nil && !configForce {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	return cmd
}

func newConfigPathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return fmt.Errorf("resolving config path: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	return cmd
}
