package commands

import (
	"io"
	"log/slog"

	"snapcheck/internal/cli"
	"snapcheck/internal/config"
	"snapcheck/internal/domain"
	"snapcheck/internal/harness"
	"snapcheck/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand runs the selected mode over the test corpus
type RunCommand struct {
	config    *config.Config
	flags     *cli.Flags
	harness   *harness.Harness
	formatter *ui.Formatter
	viewer    ui.Viewer
	out       io.Writer
	errOut    io.Writer
	log       *slog.Logger
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	flags *cli.Flags,
	h *harness.Harness,
	formatter *ui.Formatter,
	viewer ui.Viewer,
	out, errOut io.Writer,
	log *slog.Logger,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		flags:     flags,
		harness:   h,
		formatter: formatter,
		viewer:    viewer,
		out:       out,
		errOut:    errOut,
		log:       log,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	mode, _ := rc.flags.Mode()

	if err := rc.harness.Prepare(); err != nil {
		return err
	}

	var tests []domain.TestCase
	if mode != domain.ModeClean {
		var err error
		tests, err = rc.harness.Tests()
		if err != nil {
			return err
		}
		if len(tests) == 0 {
			color.New(color.FgYellow).Fprintln(rc.out, "No tests to execute")
			return nil
		}

		if rc.config.Flags.Progress && ui.IsTerminal(rc.errOut) {
			rc.harness.SetProgress(ui.NewProgressBar(len(tests), mode.String(), rc.errOut))
			rc.formatter.SetQuiet(true)
		}
	}

	report, err := rc.harness.Execute(cmd.Context(), mode, tests)
	if err != nil {
		return err
	}

	if rc.config.Flags.Review && (mode == domain.ModeCompare || mode == domain.ModeLeakCheck) {
		if err := rc.review(report); err != nil {
			return err
		}
	}

	if !report.Summary.OK() {
		return harness.ErrFailures
	}
	return nil
}

func (rc *RunCommand) review(report *harness.Report) error {
	failures := report.Failures()
	if len(failures) == 0 {
		return nil
	}
	if !ui.IsTerminal(rc.out) {
		rc.log.Warn("--review needs a terminal, skipping the failure viewer")
		return nil
	}
	return rc.viewer.View(failures)
}
