package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestConfig_Roots(t *testing.T) {
	tests := []struct {
		name         string
		config       *Config
		expectedTest string
		expectedSnap string
	}{
		{
			name: "default roots",
			config: &Config{
				ProjectPath:  ".",
				TestRoot:     "tests",
				SnapshotRoot: "snapshots",
			},
			expectedTest: "tests",
			expectedSnap: "snapshots",
		},
		{
			name: "project relative roots",
			config: &Config{
				ProjectPath:  "/project",
				TestRoot:     "tests",
				SnapshotRoot: "out/snapshots",
			},
			expectedTest: "/project/tests",
			expectedSnap: "/project/out/snapshots",
		},
		{
			name: "absolute roots",
			config: &Config{
				ProjectPath:  "/project",
				TestRoot:     "/absolute/tests",
				SnapshotRoot: "/absolute/snapshots/",
			},
			expectedTest: "/absolute/tests",
			expectedSnap: "/absolute/snapshots",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.GetTestRoot(); got != filepath.FromSlash(tt.expectedTest) {
				t.Errorf("expected test root %s, got %s", tt.expectedTest, got)
			}
			if got := tt.config.GetSnapshotRoot(); got != filepath.FromSlash(tt.expectedSnap) {
				t.Errorf("expected snapshot root %s, got %s", tt.expectedSnap, got)
			}
		})
	}
}

func TestConfig_GetSubjectPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"

	t.Run("relative path resolves against project", func(t *testing.T) {
		cfg.Subject = "./build/flood"
		if got := cfg.GetSubjectPath(); got != filepath.FromSlash("/project/build/flood") {
			t.Errorf("expected /project/build/flood, got %s", got)
		}
	})

	t.Run("bare name is looked up in PATH", func(t *testing.T) {
		cfg.Subject = "flood"
		if got := cfg.GetSubjectPath(); got != "flood" {
			t.Errorf("expected flood, got %s", got)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.TestRoot != DefaultTestRoot {
		t.Errorf("expected TestRoot %s, got %s", DefaultTestRoot, cfg.TestRoot)
	}
	if cfg.LeakCheck.ExitCode != DefaultLeakExitCode {
		t.Errorf("expected leak exit code %d, got %d", DefaultLeakExitCode, cfg.LeakCheck.ExitCode)
	}
	if diff := cmp.Diff(DefaultTestDirs, cfg.TestDirs); diff != "" {
		t.Errorf("test dirs mismatch (-want +got):\n%s", diff)
	}

	cfg.TestDirs[0] = "changed"
	if DefaultTestDirs[0] == "changed" {
		t.Error("New must copy the default test dirs")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"empty test root", func(c *Config) { c.TestRoot = "" }},
		{"empty snapshot root", func(c *Config) { c.SnapshotRoot = "" }},
		{"same roots", func(c *Config) { c.SnapshotRoot = c.TestRoot }},
		{"snapshot root inside test root", func(c *Config) { c.SnapshotRoot = "tests/golden" }},
		{"test root inside snapshot root", func(c *Config) { c.TestRoot = "snapshots/inputs" }},
		{"same roots spelled differently", func(c *Config) { c.SnapshotRoot = "./tests/" }},
		{"extension without dot", func(c *Config) { c.SnapshotExt = "out" }},
		{"bare dot extension", func(c *Config) { c.SnapshotExt = "." }},
		{"empty subject", func(c *Config) { c.Subject = "" }},
		{"empty leak tool", func(c *Config) { c.LeakCheck.Tool = "" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"unknown diff style", func(c *Config) { c.DiffStyle = "side-by-side" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_Validate_SiblingRoots(t *testing.T) {
	cfg := New()
	cfg.TestRoot = "tests"
	cfg.SnapshotRoot = "tests-golden"
	if err := cfg.Validate(); err != nil {
		t.Errorf("roots sharing a name prefix are not nested, got %v", err)
	}
}

func TestConfig_LoadFile(t *testing.T) {
	t.Run("missing default file keeps defaults", func(t *testing.T) {
		cfg := New()
		cfg.ProjectPath = t.TempDir()

		path, err := cfg.LoadFile()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "" {
			t.Errorf("expected no file, got %s", path)
		}
		if cfg.Subject != DefaultSubject {
			t.Errorf("expected subject %s, got %s", DefaultSubject, cfg.Subject)
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		cfg := New()
		cfg.Flags.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml")
		if _, err := cfg.LoadFile(); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("file and env placeholders override defaults", func(t *testing.T) {
		dir := t.TempDir()
		env := "SNAPCHECK_TEST_BUILD=out/bin\n"
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("SNAPCHECK_TEST_BUILD") })

		yml := `
subject: ./$(SNAPCHECK_TEST_BUILD)/flood
testDirs: [misc]
leakCheck:
  exitCode: 42
timeout: 5s
diffStyle: full
`
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yml), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg := New()
		cfg.ProjectPath = dir
		path, err := cfg.LoadFile()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != filepath.Join(dir, DefaultConfigFile) {
			t.Errorf("expected config path %s, got %s", filepath.Join(dir, DefaultConfigFile), path)
		}
		if cfg.Subject != "./out/bin/flood" {
			t.Errorf("expected expanded subject, got %s", cfg.Subject)
		}
		if diff := cmp.Diff([]string{"misc"}, cfg.TestDirs); diff != "" {
			t.Errorf("test dirs mismatch (-want +got):\n%s", diff)
		}
		if cfg.LeakCheck.ExitCode != 42 {
			t.Errorf("expected exit code 42, got %d", cfg.LeakCheck.ExitCode)
		}
		if cfg.LeakCheck.Tool != DefaultLeakTool {
			t.Errorf("expected leak tool to keep default %s, got %s", DefaultLeakTool, cfg.LeakCheck.Tool)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %s", cfg.Timeout)
		}
		if cfg.DiffStyle != DiffStyleFull {
			t.Errorf("expected diff style full, got %s", cfg.DiffStyle)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("testDirs: {"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cfg := New()
		cfg.ProjectPath = dir
		if _, err := cfg.LoadFile(); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}
