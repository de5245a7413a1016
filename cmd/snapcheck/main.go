package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"snapcheck/internal/cli"
	"snapcheck/internal/cli/commands"
	"snapcheck/internal/config"
	"snapcheck/internal/harness"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "snapcheck",
		Short: "Snapshot regression tests for a command-line executable",
		Long: `Run an executable against every test input, compare its standard output with
the recorded snapshot, record new snapshots, remove orphaned ones, or check for leaks.`,
		Version:       version,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands and register them
	cmds := commands.NewCommands(cfg, &flags, os.Stdout, os.Stderr)
	cmds.Register(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// the summary already told the user which tests failed
		if !errors.Is(err, harness.ErrFailures) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
