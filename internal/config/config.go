package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath  string   `yaml:"project"`
	TestRoot     string   `yaml:"testRoot"`
	SnapshotRoot string   `yaml:"snapshotRoot"`
	SnapshotExt  string   `yaml:"snapshotExt"`
	TestDirs     []string `yaml:"testDirs"`

	// Execution settings
	Subject   string          `yaml:"subject"`
	LeakCheck LeakCheckConfig `yaml:"leakCheck"`
	Timeout   time.Duration   `yaml:"timeout"`

	// Output settings
	DiffStyle string        `yaml:"diffStyle"`
	Logging   LoggingConfig `yaml:"logging"`

	// Command flags
	Flags Flags `yaml:"-"`
}

type LeakCheckConfig struct {
	Tool     string `yaml:"tool"`
	ExitCode int    `yaml:"exitCode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile string
	Filter     string
	Progress   bool
	Review     bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:  DefaultProjectPath,
		TestRoot:     DefaultTestRoot,
		SnapshotRoot: DefaultSnapshotRoot,
		SnapshotExt:  DefaultSnapshotExt,
		Subject:      DefaultSubject,
		LeakCheck: LeakCheckConfig{
			Tool:     DefaultLeakTool,
			ExitCode: DefaultLeakExitCode,
		},
		DiffStyle: DiffStyleUnified,
		Logging:   LoggingConfig{Level: DefaultLogLevel},
	}
	// Copy default test dirs
	cfg.TestDirs = make([]string, len(DefaultTestDirs))
	copy(cfg.TestDirs, DefaultTestDirs)
	return cfg
}

// Validate checks the settings every mode relies on
func (c *Config) Validate() error {
	if c.TestRoot == "" {
		return fmt.Errorf("test root must not be empty")
	}
	if c.SnapshotRoot == "" {
		return fmt.Errorf("snapshot root must not be empty")
	}
	testRoot, snapshotRoot := c.GetTestRoot(), c.GetSnapshotRoot()
	if within(testRoot, snapshotRoot) || within(snapshotRoot, testRoot) {
		return fmt.Errorf("test root %s and snapshot root %s must not overlap", testRoot, snapshotRoot)
	}
	if !strings.HasPrefix(c.SnapshotExt, ".") || len(c.SnapshotExt) < 2 {
		return fmt.Errorf("snapshot extension must start with a dot: %q", c.SnapshotExt)
	}
	if c.Subject == "" {
		return fmt.Errorf("subject executable must not be empty")
	}
	if c.LeakCheck.Tool == "" {
		return fmt.Errorf("leak tool must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	switch c.DiffStyle {
	case DiffStyleUnified, DiffStyleFull:
	default:
		return fmt.Errorf("unknown diff style %q (want %s or %s)", c.DiffStyle, DiffStyleUnified, DiffStyleFull)
	}
	return nil
}

// GetTestRoot returns the test root, relative roots resolved against the project path
func (c *Config) GetTestRoot() string {
	return c.resolve(c.TestRoot)
}

// GetSnapshotRoot returns the snapshot root, relative roots resolved against the project path
func (c *Config) GetSnapshotRoot() string {
	return c.resolve(c.SnapshotRoot)
}

// GetSubjectPath returns the path of the executable under test.
// Bare command names are left alone so they are looked up in PATH.
func (c *Config) GetSubjectPath() string {
	if !strings.ContainsRune(c.Subject, '/') && !strings.ContainsRune(c.Subject, filepath.Separator) {
		return c.Subject
	}
	return c.resolve(c.Subject)
}

// GetConfigFile returns the config file to load and whether it was asked for explicitly
func (c *Config) GetConfigFile() (string, bool) {
	if c.Flags.ConfigFile != "" {
		return c.Flags.ConfigFile, true
	}
	return filepath.Join(c.ProjectPath, DefaultConfigFile), false
}

// within reports whether p is parent itself or lies below it
func within(parent, p string) bool {
	rel, err := filepath.Rel(parent, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.ProjectPath, p)
}
