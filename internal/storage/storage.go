// Package storage owns the snapshot root: it reads, writes, lists and removes
// the recorded snapshot files. Nothing else writes under the snapshot root.
package storage

import (
	"context"
	"errors"
	"log/slog"

	"snapcheck/internal/paths"
)

// ErrSnapshotMissing is returned when reading a snapshot that was never recorded
var ErrSnapshotMissing = errors.New("snapshot does not exist")

// Storage persists snapshots
type Storage interface {
	Exists(snapshotPath string) bool
	Read(snapshotPath string) ([]byte, error)
	Write(ctx context.Context, snapshotPath string, content []byte) error
	ListAll() ([]string, error)
	Remove(snapshotPath string) error
	// PruneEmptyDirs removes directories under the root that hold no files.
	PruneEmptyDirs() ([]string, error)
}

// FileStore stores snapshots as plain files under the mapper's snapshot root
type FileStore struct {
	mapper *paths.Mapper
	log    *slog.Logger
}

// NewFileStore returns a Storage rooted at the mapper's snapshot root
func NewFileStore(mapper *paths.Mapper, log *slog.Logger) *FileStore {
	return &FileStore{mapper: mapper, log: log}
}
