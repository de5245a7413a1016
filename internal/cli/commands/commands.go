package commands

import (
	"fmt"
	"io"
	"log/slog"

	"snapcheck/internal/cli"
	"snapcheck/internal/compare"
	"snapcheck/internal/config"
	"snapcheck/internal/discovery"
	"snapcheck/internal/execution"
	"snapcheck/internal/harness"
	"snapcheck/internal/logging"
	"snapcheck/internal/parser"
	"snapcheck/internal/paths"
	"snapcheck/internal/storage"
	"snapcheck/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands. The commands themselves are built in
// setup, once flags and the config file have settled the configuration.
type Commands struct {
	config *config.Config
	flags  *cli.Flags
	out    io.Writer
	errOut io.Writer

	Run  *RunCommand
	List *ListCommand
}

// NewCommands creates the command set; results go to out, diagnostics to errOut
func NewCommands(cfg *config.Config, flags *cli.Flags, out, errOut io.Writer) *Commands {
	return &Commands{
		config: cfg,
		flags:  flags,
		out:    out,
		errOut: errOut,
	}
}

// setup loads the config file, applies flag overrides and wires dependencies
func (c *Commands) setup(cmd *cobra.Command) error {
	changed := cmd.Flags().Changed
	c.flags.Apply(c.config, changed)

	configPath, err := c.config.LoadFile()
	if err != nil {
		return err
	}
	// the command line wins over the file
	c.flags.Apply(c.config, changed)

	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(c.config.Logging.Level)
	if err != nil {
		return err
	}
	log := logging.New(c.errOut, level)
	if configPath != "" {
		log.Debug("loaded config file", "path", configPath)
	}

	filter := discovery.NewFilter()
	if err := filter.Validate(c.config.Flags.Filter); err != nil {
		return err
	}

	c.wire(log, filter)
	return nil
}

func (c *Commands) wire(log *slog.Logger, filter *discovery.Filter) {
	cfg := c.config

	// Initialize dependencies
	mapper := paths.NewMapper(cfg.GetTestRoot(), cfg.GetSnapshotRoot(), cfg.SnapshotExt)
	walker := discovery.NewWalker(mapper, cfg.TestDirs, log)
	runner := execution.NewRunner(cfg, log)
	store := storage.NewFileStore(mapper, log)
	engine := compare.NewEngine(store)
	leaks := parser.NewLeakParser()
	formatter := ui.NewFormatter(cfg, c.out)
	viewer := ui.NewFailureViewer(cfg)

	h := harness.New(cfg, mapper, walker, filter, runner, store, engine, leaks, formatter, log)

	c.Run = NewRunCommand(cfg, c.flags, h, formatter, viewer, c.out, c.errOut, log)
	c.List = NewListCommand(cfg, h, mapper, store, formatter, c.out)
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command) {
	flags := c.flags

	rootCmd.Args = cobra.NoArgs
	rootCmd.SilenceUsage = true
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.setup(cmd)
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return c.Run.Execute(cmd, args)
	}

	// Shared by the run modes and list
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by path pattern relative to the test root (supports globs, e.g. 'misc/**' or '*closure*')")
	pf.StringVarP(&flags.ConfigFile, "config", "c", "", "Path to the config file (default <project>/"+config.DefaultConfigFile+")")
	pf.StringVarP(&flags.Project, "project", "p", config.DefaultProjectPath, "Project directory the test and snapshot roots are relative to")
	pf.StringVar(&flags.LogLevel, "log-level", config.DefaultLogLevel, "Diagnostic log level (debug, info, warn, error)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Shortcut for --log-level debug")

	// Modes
	rootCmd.Flags().BoolVarP(&flags.Diff, "diff", "d", false, "Compare the subject's output with the recorded snapshots")
	rootCmd.Flags().BoolVarP(&flags.Upgrade, "upgrade", "u", false, "Record the subject's current output as the new snapshots")
	rootCmd.Flags().BoolVar(&flags.Clean, "clean", false, "Delete snapshots that no test input maps to")
	rootCmd.Flags().BoolVarP(&flags.LeakCheck, "leak-check", "l", false, "Run every test under the leak tool")
	rootCmd.MarkFlagsMutuallyExclusive("diff", "upgrade", "clean", "leak-check")
	rootCmd.MarkFlagsOneRequired("diff", "upgrade", "clean", "leak-check")

	rootCmd.Flags().BoolVar(&flags.Progress, "progress", false, "Show a progress bar instead of a line per passing test")
	rootCmd.Flags().BoolVar(&flags.Review, "review", false, "Browse the failures in an interactive viewer when the run finishes")
	rootCmd.Flags().StringVarP(&flags.Subject, "subject", "s", config.DefaultSubject, "Executable under test")
	rootCmd.Flags().StringVar(&flags.LeakTool, "leak-tool", config.DefaultLeakTool, "Leak tool wrapping the subject in --leak-check mode")
	rootCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Kill a test's subject after this long (0 disables)")
	rootCmd.Flags().StringVar(&flags.DiffStyle, "diff-style", config.DiffStyleUnified, "How failing output is shown: unified or full")

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Walk the test directories and list the test inputs without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(listCmd)
}
