package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"snapcheck/internal/domain"
	"snapcheck/internal/paths"
)

// Walker finds test inputs under the test root
type Walker struct {
	mapper *paths.Mapper
	dirs   []string
	log    *slog.Logger
}

// NewWalker creates a Walker over the given subdirectories of the mapper's test root
func NewWalker(mapper *paths.Mapper, dirs []string, log *slog.Logger) *Walker {
	return &Walker{
		mapper: mapper,
		dirs:   append([]string(nil), dirs...),
		log:    log,
	}
}

// Discover walks every configured test directory in order and returns one
// TestCase per regular file. Missing directories are logged and skipped.
func (w *Walker) Discover() ([]domain.TestCase, error) {
	var tests []domain.TestCase
	for _, dir := range w.dirs {
		dirPath := filepath.Join(w.mapper.TestRoot(), filepath.FromSlash(dir))
		info, err := os.Stat(dirPath)
		if err != nil || !info.IsDir() {
			w.log.Warn("test directory does not exist or is not a directory", "dir", dirPath)
			continue
		}

		found, err := w.walk(dirPath)
		if err != nil {
			return nil, err
		}
		tests = append(tests, found...)
	}
	return tests, nil
}

// DiscoverAll walks the whole test root, including directories that are not
// configured to run. Used to decide which snapshots are still owned by a test.
func (w *Walker) DiscoverAll() ([]domain.TestCase, error) {
	root := w.mapper.TestRoot()
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test root is not a directory: %s", root)
	}
	return w.walk(root)
}

func (w *Walker) walk(dir string) ([]domain.TestCase, error) {
	var tests []domain.TestCase

	// WalkDir does not descend into a symlinked start dir. Walk its target and
	// report the files under dir.
	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if rel, err := filepath.Rel(target, path); err == nil {
			path = filepath.Join(dir, rel)
		}

		// Symlinks, devices, sockets and the like are not test inputs
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := w.mapper.Rel(path)
		if err != nil {
			return err
		}
		tests = append(tests, domain.TestCase{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	return tests, nil
}
