// Package compare decides whether captured subject output matches its snapshot.
package compare

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"snapcheck/internal/domain"
	"snapcheck/internal/storage"
)

// Reader is the read side of the snapshot store
type Reader interface {
	Exists(snapshotPath string) bool
	Read(snapshotPath string) ([]byte, error)
}

// Engine compares captured output with recorded snapshots. It never writes.
type Engine struct {
	store Reader
}

// NewEngine creates an Engine reading snapshots from store
func NewEngine(store Reader) *Engine {
	return &Engine{store: store}
}

// Compare classifies captured against the snapshot at snapshotPath.
// The returned Result carries Status, and for a mismatch the diff and both texts.
func (e *Engine) Compare(captured []byte, snapshotPath string) (domain.Result, error) {
	result := domain.Result{SnapshotPath: snapshotPath}

	if !e.store.Exists(snapshotPath) {
		result.Status = domain.StatusFailMissing
		return result, nil
	}

	expected, err := e.store.Read(snapshotPath)
	if err != nil {
		// Removed between Exists and Read
		if errors.Is(err, storage.ErrSnapshotMissing) {
			result.Status = domain.StatusFailMissing
			return result, nil
		}
		return result, err
	}

	if bytes.Equal(expected, captured) {
		result.Status = domain.StatusPass
		return result, nil
	}

	diff, err := Diff(expected, captured, snapshotPath)
	if err != nil {
		return result, err
	}
	result.Status = domain.StatusFailDiff
	result.Diff = diff
	result.Expected = expected
	result.Actual = captured
	return result, nil
}

// Diff renders a unified line diff of old against new with no context lines
func Diff(old, new []byte, name string) (string, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(old),
		B:        splitLines(new),
		FromFile: name,
		ToFile:   "output",
		Context:  0,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}
	if text == "" {
		// Only reachable when the inputs differ in a way lines cannot show
		text = fmt.Sprintf("--- %s\n+++ output\n(contents differ: %d bytes vs %d bytes)\n", name, len(old), len(new))
	}
	return text, nil
}

// splitLines keeps line terminators so a missing final newline is a difference
func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	lines := difflib.SplitLines(string(b))
	// SplitLines appends "\n" to the last piece; an input ending in a newline
	// yields a trailing "\n" element we do not want to show as a blank line.
	if bytes.HasSuffix(b, []byte("\n")) {
		lines = lines[:len(lines)-1]
	} else {
		last := lines[len(lines)-1]
		lines[len(lines)-1] = last[:len(last)-1] + "\n\\ No newline at end of file\n"
	}
	return lines
}
