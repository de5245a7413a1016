package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envPattern.FindStringSubmatch(m)[1])
	})
}

// LoadFile overlays the YAML config file (if any) onto c.
// The project's .env is loaded first so the file can refer to its variables.
// It returns the path of the file that was read, or "" when none was found.
func (c *Config) LoadFile() (string, error) {
	envPath := filepath.Join(c.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("loading %s: %w", envPath, err)
	}

	path, explicit := c.GetConfigFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}

	// expand $(ENV_VAR) placeholders
	expanded := expandEnvVars(string(data))

	// unmarshal on top of the current values so unset keys keep their defaults
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return "", fmt.Errorf("unmarshalling yaml %s: %w", path, err)
	}
	return path, nil
}
