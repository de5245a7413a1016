package commands

import (
	"io"

	"snapcheck/internal/config"
	"snapcheck/internal/domain"
	"snapcheck/internal/harness"
	"snapcheck/internal/paths"
	"snapcheck/internal/storage"
	"snapcheck/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	harness   *harness.Harness
	mapper    *paths.Mapper
	store     storage.Storage
	formatter *ui.Formatter
	out       io.Writer
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	h *harness.Harness,
	mapper *paths.Mapper,
	store storage.Storage,
	formatter *ui.Formatter,
	out io.Writer,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		harness:   h,
		mapper:    mapper,
		store:     store,
		formatter: formatter,
		out:       out,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	tests, err := lc.harness.Tests()
	if err != nil {
		return err
	}

	if len(tests) == 0 {
		color.New(color.FgYellow).Fprintln(lc.out, "No tests found")
		return nil
	}

	lc.formatter.PrintTestList(tests, lc.hasSnapshot)
	return nil
}

func (lc *ListCommand) hasSnapshot(tc domain.TestCase) bool {
	snapshotPath, err := lc.mapper.ToSnapshotPath(tc.Path)
	return err == nil && lc.store.Exists(snapshotPath)
}
