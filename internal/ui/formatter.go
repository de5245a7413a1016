package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"snapcheck/internal/config"
	"snapcheck/internal/domain"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	white  = color.New(color.FgWhite)
)

// Formatter prints per-test result lines and the run summary
type Formatter struct {
	config *config.Config
	out    io.Writer

	// quiet holds back passing lines and defers failures until Summary,
	// so they do not tear through a progress bar
	quiet    bool
	deferred []domain.Result
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

// SetQuiet toggles progress-bar friendly output
func (f *Formatter) SetQuiet(quiet bool) {
	f.quiet = quiet
}

// Result prints one result line, plus the diff or diagnostics for failures
func (f *Formatter) Result(r domain.Result) {
	if f.quiet {
		if r.Status.Failed() {
			f.deferred = append(f.deferred, r)
		}
		return
	}
	f.printResult(r)
}

func (f *Formatter) printResult(r domain.Result) {
	name := f.rel(r.TestPath)

	switch r.Status {
	case domain.StatusPass, domain.StatusLeakClean:
		green.Fprintf(f.out, "✓ %s\n", name)

	case domain.StatusFailMissing:
		red.Fprintf(f.out, "✗ %s\n", name)
		red.Fprintf(f.out, "  snapshot `%s` does not exist.\n", f.rel(r.SnapshotPath))

	case domain.StatusFailDiff:
		red.Fprintf(f.out, "✗ %s\n", name)
		f.printDiff(r)

	case domain.StatusUpgraded:
		green.Fprintf(f.out, "upgraded: %s\n", f.rel(r.SnapshotPath))

	case domain.StatusCleaned:
		green.Fprintf(f.out, "cleaned: %s\n", f.rel(r.SnapshotPath))

	case domain.StatusLeakDetected:
		red.Fprintf(f.out, "✗ %s\n", name)
		if r.Leak != nil {
			yellow.Fprintf(f.out, "  %s\n", FormatLeakSummary(r.Leak))
		}
		fmt.Fprint(f.out, ensureNewline(r.Diagnostics))

	case domain.StatusError:
		if name == "" {
			name = f.rel(r.SnapshotPath)
		}
		red.Fprintf(f.out, "✗ %s\n", name)
		red.Fprintf(f.out, "  error: %v\n", r.Err)
	}
}

func (f *Formatter) printDiff(r domain.Result) {
	if f.config.DiffStyle == config.DiffStyleFull {
		fmt.Fprintln(f.out, "old:")
		fmt.Fprint(f.out, ensureNewline(string(r.Expected)))
		fmt.Fprintln(f.out, "new:")
		fmt.Fprint(f.out, ensureNewline(string(r.Actual)))
		return
	}

	for _, line := range strings.SplitAfter(r.Diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			white.Fprint(f.out, line)
		case strings.HasPrefix(line, "@@"):
			cyan.Fprint(f.out, line)
		case strings.HasPrefix(line, "+"):
			green.Fprint(f.out, line)
		case strings.HasPrefix(line, "-"):
			red.Fprint(f.out, line)
		default:
			fmt.Fprint(f.out, line)
		}
	}
}

// Summary prints held back failures and the statistics table
func (f *Formatter) Summary(s domain.Summary) {
	for _, r := range f.deferred {
		f.printResult(r)
	}
	f.deferred = nil

	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	cyan.Fprintf(f.out, "│ %-31s │ %-27s │\n", "Mode", s.Mode)
	cyan.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")

	if s.Mode == domain.ModeClean {
		f.row("Snapshots", s.Total, white)
		f.row("Kept", s.Passed, green)
		f.row("Cleaned", s.Cleaned, yellow)
	} else {
		f.row("Tests", s.Total, white)
		f.row(passedLabel(s.Mode), s.Passed, green)
		f.row("Failed", s.Failed, red)
	}
	f.row("Errors", s.Errors, red)

	fmt.Fprintf(f.out, "│ %-31s │ ", "Duration")
	white.Fprintf(f.out, "%-27s", fmt.Sprintf("%.2fs", s.Duration.Seconds()))
	fmt.Fprint(f.out, " │\n")
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	switch {
	case s.OK() && s.Mode == domain.ModeClean:
		green.Fprintf(f.out, "✓ %d orphan snapshot(s) removed\n", s.Cleaned)
	case s.OK():
		green.Fprintln(f.out, "✓ All tests passed!")
	default:
		red.Fprintf(f.out, "✗ %d test(s) failed, %d error(s)\n", s.Failed, s.Errors)
	}
}

func (f *Formatter) row(label string, n int, c *color.Color) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27d", n)
	fmt.Fprint(f.out, " │\n")
	fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
}

func passedLabel(mode domain.Mode) string {
	switch mode {
	case domain.ModeUpgrade:
		return "Upgraded"
	case domain.ModeLeakCheck:
		return "Leak free"
	}
	return "Passed"
}

// PrintTestList prints discovered tests as a tree; tests without a snapshot are marked
func (f *Formatter) PrintTestList(tests []domain.TestCase, hasSnapshot func(domain.TestCase) bool) {
	green.Fprintf(f.out, "Found %d test file(s):\n\n", len(tests))

	for i, test := range tests {
		marker := ""
		if !hasSnapshot(test) {
			marker = " " + red.Sprint("[no snapshot]")
		}

		if i == len(tests)-1 {
			cyan.Fprintf(f.out, "└── %s%s\n", test.RelPath, marker)
		} else {
			cyan.Fprintf(f.out, "├── %s%s\n", test.RelPath, marker)
		}
	}
}

// FormatLeakSummary renders the leak tool's closing numbers on one line
func FormatLeakSummary(l *domain.LeakSummary) string {
	return fmt.Sprintf("definitely lost: %d bytes in %d blocks, indirectly lost: %d bytes, possibly lost: %d bytes, errors: %d",
		l.DefinitelyLostBytes, l.DefinitelyLostBlocks, l.IndirectlyLostBytes, l.PossiblyLostBytes, l.Errors)
}

// rel shortens p against the project path for display
func (f *Formatter) rel(p string) string {
	if p == "" {
		return ""
	}
	if rel, err := filepath.Rel(f.config.ProjectPath, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
