package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moby/sys/atomicwriter"

	"snapcheck/internal/paths"
)

// Exists reports whether a regular snapshot file exists at snapshotPath
func (s *FileStore) Exists(snapshotPath string) bool {
	info, err := os.Stat(snapshotPath)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the stored snapshot
func (s *FileStore) Read(snapshotPath string) ([]byte, error) {
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, snapshotPath)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", snapshotPath, err)
	}
	return data, nil
}

// Write creates any missing parent directories and replaces the snapshot.
// atomicwriter writes a synced temp file next to the target and renames it
// over the target, so readers never see a truncated snapshot.
func (s *FileStore) Write(ctx context.Context, snapshotPath string, content []byte) error {
	if err := s.checkOwned(snapshotPath); err != nil {
		return err
	}

	dir := filepath.Dir(snapshotPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	err := retry(ctx, "write", func() error {
		return atomicwriter.WriteFile(snapshotPath, content, 0644)
	})
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", snapshotPath, err)
	}
	return nil
}

// ListAll returns every regular file under the snapshot root, sorted
func (s *FileStore) ListAll() ([]string, error) {
	root := s.mapper.SnapshotRoot()
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots under %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Remove deletes a single snapshot file
func (s *FileStore) Remove(snapshotPath string) error {
	if err := s.checkOwned(snapshotPath); err != nil {
		return err
	}
	if err := os.Remove(snapshotPath); err != nil {
		return fmt.Errorf("remove snapshot %s: %w", snapshotPath, err)
	}
	return nil
}

// PruneEmptyDirs removes empty directories below the snapshot root, deepest
// first. The root itself is kept. Returns the removed directories.
func (s *FileStore) PruneEmptyDirs() ([]string, error) {
	root := s.mapper.SnapshotRoot()
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan snapshot dirs under %s: %w", root, err)
	}

	// Deeper paths first so parents empty out before they are visited
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	var removed []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) != 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			s.log.Warn("failed to remove empty snapshot dir", "dir", dir, "error", err)
			continue
		}
		s.log.Debug("removed empty snapshot dir", "dir", dir)
		removed = append(removed, dir)
	}
	return removed, nil
}

func (s *FileStore) checkOwned(snapshotPath string) error {
	if !s.mapper.InSnapshotRoot(snapshotPath) {
		return fmt.Errorf("%w: %s is outside the snapshot root %s", paths.ErrInvalidPath, snapshotPath, s.mapper.SnapshotRoot())
	}
	return nil
}
