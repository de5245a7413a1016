package cli

import (
	"time"

	"snapcheck/internal/config"
	"snapcheck/internal/domain"
)

// Flags holds command-line flags
type Flags struct {
	// Modes, exactly one per run
	Diff      bool
	Upgrade   bool
	Clean     bool
	LeakCheck bool

	Filter   string
	Progress bool
	Review   bool

	ConfigFile string
	Project    string
	Subject    string
	LeakTool   string
	Timeout    time.Duration
	DiffStyle  string
	LogLevel   string
	Verbose    bool
}

// Mode returns the selected mode, false when none was given
func (f *Flags) Mode() (domain.Mode, bool) {
	switch {
	case f.Diff:
		return domain.ModeCompare, true
	case f.Upgrade:
		return domain.ModeUpgrade, true
	case f.Clean:
		return domain.ModeClean, true
	case f.LeakCheck:
		return domain.ModeLeakCheck, true
	}
	return domain.ModeCompare, false
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile: f.ConfigFile,
		Filter:     f.Filter,
		Progress:   f.Progress,
		Review:     f.Review,
	}
}

// Apply overrides cfg with the flags the user actually set.
// changed reports whether a flag was given on the command line.
func (f *Flags) Apply(cfg *config.Config, changed func(name string) bool) {
	cfg.Flags = f.ToConfigFlags()

	if changed("project") {
		cfg.ProjectPath = f.Project
	}
	if changed("subject") {
		cfg.Subject = f.Subject
	}
	if changed("leak-tool") {
		cfg.LeakCheck.Tool = f.LeakTool
	}
	if changed("timeout") {
		cfg.Timeout = f.Timeout
	}
	if changed("diff-style") {
		cfg.DiffStyle = f.DiffStyle
	}
	if changed("log-level") {
		cfg.Logging.Level = f.LogLevel
	}
	if f.Verbose {
		cfg.Logging.Level = "debug"
	}
}
