// Package main provides the draftgen CLI entry point.
// draftgen turns a natural-language description into a validated,
// structured email draft.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/draftgen-cli/cmd"
	"github.com/otherjamesbrown/draftgen-cli/pkg/buildinfo"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// Global flags.
var (
	logLevel string
	logJSON  bool
	debug    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "draftgen",
	Short: "Generate structured email drafts from plain descriptions",
	Long: `draftgen is a command-line tool that turns a short natural-language
description into a complete, validated email draft.

The description is classified to infer who is writing to whom, a tailored
instruction is sent to the generation service, and the response is parsed
and checked before anything is shown. When the service is unreachable, a
safe template draft is produced instead.

COMMON WORKFLOWS:
  Generate a draft:   draftgen draft "ask my manager for friday off"
  Machine output:     draftgen draft --output json "..."
  Check routing:      draftgen model classify "..."
  Store API key:      draftgen auth login

DISCOVERY:
  draftgen <command> --help   Subcommands, flags, and examples`,
	// main prints the final error itself; cobra printing it too would
	// report every failure twice.
	SilenceErrors: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		logCfg := logging.DefaultConfig()
		if logLevel != "" {
			logCfg.Level = logging.Level(logLevel)
		}
		if debug {
			logCfg.Level = logging.LevelDebug
		}
		if logJSON {
			logCfg.JSONFormat = true
		}
		logging.SetGlobal(logging.NewLogger(logCfg))
		return nil
	},
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get("draftgen")
		out := c.OutOrStdout()
		fmt.Fprintf(out, "draftgen version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
		fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:      %s\n", info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "force JSON log output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(cmd.NewDraftCommand(nil))
	rootCmd.AddCommand(cmd.NewModelCommand(nil))
	rootCmd.AddCommand(cmd.NewAuthCommand(nil))
	rootCmd.AddCommand(cmd.NewConfigCommand(nil))
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
