package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"snapcheck/internal/config"
	"snapcheck/internal/domain"
)

// Viewer displays failing results in an interactive TUI
type Viewer interface {
	View(failures []domain.Result) error
}

// FailureViewer browses the failing results of a run in an interactive TUI.
// It only reads results; accepting new output is what --upgrade is for.
type FailureViewer struct {
	config    *config.Config
	formatter *Formatter
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(cfg *config.Config) *FailureViewer {
	return &FailureViewer{
		config:    cfg,
		formatter: NewFormatter(cfg, nil),
	}
}

// View opens the viewer over failures and blocks until the user quits
func (fv *FailureViewer) View(failures []domain.Result) error {
	if len(failures) == 0 {
		color.Green("✓ No failures to review!")
		return nil
	}

	// Items the user has looked at and marked, in memory only
	reviewed := make(map[int]bool)

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(index int) string {
		name := fv.formatter.rel(failures[index].TestPath)
		if name == "" {
			name = fv.formatter.rel(failures[index].SnapshotPath)
		}
		if reviewed[index] {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(name))
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(name))
	}

	for i := range failures {
		list.AddItem(getListItemText(i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetScrollable(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsView, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Failures (%d total, %d reviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, q quit ",
			len(failures), len(reviewed)))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			statsView.SetText(fv.formatStats(failures[index]))
			detailsView.SetText(fv.formatDetails(failures[index])).ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				app.Stop()
				return nil
			case 'r', 'R':
				index := list.GetCurrentItem()
				if reviewed[index] {
					delete(reviewed, index)
				} else {
					reviewed[index] = true
				}
				list.SetItemText(index, getListItemText(index), "")
				updateHeader()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatStats formats the header above the details for one failure
func (fv *FailureViewer) formatStats(r domain.Result) string {
	return fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]\n[cyan]snapshot:[white] [yellow]%s[white]\n[cyan]status:[white] [red]%s[white]",
		tview.Escape(fv.formatter.rel(r.TestPath)),
		tview.Escape(fv.formatter.rel(r.SnapshotPath)),
		r.Status)
}

// formatDetails formats a failure for display using tview color tags
func (fv *FailureViewer) formatDetails(r domain.Result) string {
	var b strings.Builder

	switch r.Status {
	case domain.StatusFailMissing:
		fmt.Fprintf(&b, "[red]No snapshot recorded yet.[white]\n\nRun with --upgrade to record %s\n",
			tview.Escape(fv.formatter.rel(r.SnapshotPath)))

	case domain.StatusFailDiff:
		if fv.config.DiffStyle == config.DiffStyleFull {
			fmt.Fprintf(&b, "[yellow]old:[white]\n%s\n[yellow]new:[white]\n%s",
				tview.Escape(string(r.Expected)), tview.Escape(string(r.Actual)))
			break
		}
		for _, line := range strings.SplitAfter(r.Diff, "\n") {
			escaped := tview.Escape(line)
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				b.WriteString("[gray]" + escaped + "[white]")
			case strings.HasPrefix(line, "@@"):
				b.WriteString("[cyan]" + escaped + "[white]")
			case strings.HasPrefix(line, "+"):
				b.WriteString("[green]" + escaped + "[white]")
			case strings.HasPrefix(line, "-"):
				b.WriteString("[red]" + escaped + "[white]")
			default:
				b.WriteString(escaped)
			}
		}

	case domain.StatusLeakDetected:
		if r.Leak != nil {
			fmt.Fprintf(&b, "[yellow]%s[white]\n\n", FormatLeakSummary(r.Leak))
		}
		b.WriteString(tview.Escape(r.Diagnostics))

	case domain.StatusError:
		fmt.Fprintf(&b, "[red]Error:[white] %s\n", tview.Escape(fmt.Sprint(r.Err)))
	}

	return b.String()
}
