// Package paths maps test input paths to the snapshot paths that record their output.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned for a path that does not lie under the expected root
	ErrInvalidPath = errors.New("invalid path")
	// ErrCollision is returned when two test inputs would share one snapshot
	ErrCollision = errors.New("snapshot path collision")
)

// Mapper converts between the test root and the snapshot root
type Mapper struct {
	testRoot     string
	snapshotRoot string
	ext          string
}

// NewMapper creates a Mapper. ext must include the leading dot.
func NewMapper(testRoot, snapshotRoot, ext string) *Mapper {
	return &Mapper{
		testRoot:     filepath.Clean(testRoot),
		snapshotRoot: filepath.Clean(snapshotRoot),
		ext:          ext,
	}
}

// ToSnapshotPath re-roots testPath under the snapshot root and swaps its
// extension for the snapshot extension: tests/misc/a.fl -> snapshots/misc/a.out
func (m *Mapper) ToSnapshotPath(testPath string) (string, error) {
	rel, err := relUnder(m.testRoot, testPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.snapshotRoot, replaceExt(rel, m.ext)), nil
}

// Rel returns testPath relative to the test root, slash separated
func (m *Mapper) Rel(testPath string) (string, error) {
	rel, err := relUnder(m.testRoot, testPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// InSnapshotRoot reports whether p is a file path strictly inside the snapshot root
func (m *Mapper) InSnapshotRoot(p string) bool {
	_, err := relUnder(m.snapshotRoot, p)
	return err == nil
}

// TestRoot returns the cleaned test root
func (m *Mapper) TestRoot() string { return m.testRoot }

// SnapshotRoot returns the cleaned snapshot root
func (m *Mapper) SnapshotRoot() string { return m.snapshotRoot }

// Set tracks mapped snapshot paths and rejects a second test input that maps
// onto a snapshot path already claimed by another one.
type Set struct {
	m      *Mapper
	owners map[string]string
}

// NewSet creates an empty Set for m
func (m *Mapper) NewSet() *Set {
	return &Set{m: m, owners: make(map[string]string)}
}

// Add maps testPath and records it
func (s *Set) Add(testPath string) (string, error) {
	snap, err := s.m.ToSnapshotPath(testPath)
	if err != nil {
		return "", err
	}
	testPath = filepath.Clean(testPath)
	if owner, ok := s.owners[snap]; ok && owner != testPath {
		return "", fmt.Errorf("%w: %s and %s both map to %s", ErrCollision, owner, testPath, snap)
	}
	s.owners[snap] = testPath
	return snap, nil
}

// Contains reports whether snapshotPath belongs to a recorded test input
func (s *Set) Contains(snapshotPath string) bool {
	_, ok := s.owners[filepath.Clean(snapshotPath)]
	return ok
}

func relUnder(root, p string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not under %s: %v", ErrInvalidPath, p, root, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not under %s", ErrInvalidPath, p, root)
	}
	return rel, nil
}

// replaceExt swaps the last extension of the file name. Dot files such as
// ".hidden" have no extension and get ext appended.
func replaceExt(p, ext string) string {
	base := filepath.Base(p)
	old := filepath.Ext(base)
	if old == base {
		old = ""
	}
	return strings.TrimSuffix(p, old) + ext
}
