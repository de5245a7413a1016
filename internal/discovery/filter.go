package discovery

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"snapcheck/internal/domain"
)

// Filter filters test cases by a path pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// Validate reports a malformed pattern before any test runs
func (f *Filter) Validate(pattern string) error {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid filter pattern: %q", pattern)
	}
	return nil
}

// FilterByPattern keeps the test cases matching pattern.
// Patterns with glob metacharacters are matched with doublestar against the
// path relative to the test root ("misc/**", "**/loop*.fl"), and against the
// file name alone ("*.fl"). Plain words match as a substring of the file name.
func (f *Filter) FilterByPattern(tests []domain.TestCase, pattern string) []domain.TestCase {
	if pattern == "" {
		return tests
	}

	isGlob := strings.ContainsAny(pattern, "*?[{")
	var filtered []domain.TestCase

	for _, test := range tests {
		name := path.Base(test.RelPath)

		if !isGlob {
			if strings.Contains(name, pattern) {
				filtered = append(filtered, test)
			}
			continue
		}

		if ok, err := doublestar.Match(pattern, test.RelPath); err == nil && ok {
			filtered = append(filtered, test)
			continue
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			filtered = append(filtered, test)
		}
	}

	return filtered
}
