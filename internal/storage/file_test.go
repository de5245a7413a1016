package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"snapcheck/internal/logging"
	"snapcheck/internal/paths"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	tmpDir := t.TempDir()
	snapRoot := filepath.Join(tmpDir, "snapshots")
	mapper := paths.NewMapper(filepath.Join(tmpDir, "tests"), snapRoot, ".out")
	return NewFileStore(mapper, logging.Discard()), snapRoot
}

func TestFileStore_WriteRead(t *testing.T) {
	store, root := newTestStore(t)
	snap := filepath.Join(root, "misc", "deep", "a.out")

	if store.Exists(snap) {
		t.Fatal("snapshot should not exist yet")
	}

	t.Run("read missing", func(t *testing.T) {
		_, err := store.Read(snap)
		if !errors.Is(err, ErrSnapshotMissing) {
			t.Errorf("expected ErrSnapshotMissing, got %v", err)
		}
	})

	t.Run("write creates parents", func(t *testing.T) {
		if err := store.Write(context.Background(), snap, []byte("42\n")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !store.Exists(snap) {
			t.Fatal("snapshot should exist after write")
		}
		got, err := store.Read(snap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != "42\n" {
			t.Errorf("expected %q, got %q", "42\n", got)
		}
	})

	t.Run("write overwrites", func(t *testing.T) {
		if err := store.Write(context.Background(), snap, []byte("1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := store.Read(snap)
		if string(got) != "1" {
			t.Errorf("expected %q, got %q", "1", got)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		if err := store.Write(context.Background(), snap, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := store.Read(snap)
		if err != nil || len(got) != 0 {
			t.Errorf("expected empty snapshot, got %q (%v)", got, err)
		}
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(root, "misc", "deep"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		if diff := cmp.Diff([]string{"a.out"}, names); diff != "" {
			t.Errorf("temp files left behind (-want +got):\n%s", diff)
		}
	})
}

func TestFileStore_Write_OutsideRoot(t *testing.T) {
	store, root := newTestStore(t)
	outside := filepath.Join(filepath.Dir(root), "tests", "misc", "a.fl")

	err := store.Write(context.Background(), outside, []byte("x"))
	if !errors.Is(err, paths.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
	if _, statErr := os.Stat(outside); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("nothing should be written outside the snapshot root")
	}
}

func TestFileStore_Write_ParentIsFile(t *testing.T) {
	store, root := newTestStore(t)
	if err := store.Write(context.Background(), filepath.Join(root, "misc"), []byte("file, not dir")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Write(context.Background(), filepath.Join(root, "misc", "a.out"), []byte("x")); err == nil {
		t.Error("expected error when a parent is a regular file")
	}
}

func TestFileStore_ListAll(t *testing.T) {
	store, root := newTestStore(t)

	t.Run("missing root lists nothing", func(t *testing.T) {
		files, err := store.ListAll()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 0 {
			t.Errorf("expected no files, got %v", files)
		}
	})

	for _, rel := range []string{"misc/b.out", "misc/a.out", "language/runtime/x.out", "stray.txt"} {
		if err := store.Write(context.Background(), filepath.Join(root, filepath.FromSlash(rel)), []byte(rel)); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	os.MkdirAll(filepath.Join(root, "empty"), 0755)

	files, err := store.ListAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{
		filepath.Join(root, "language", "runtime", "x.out"),
		filepath.Join(root, "misc", "a.out"),
		filepath.Join(root, "misc", "b.out"),
		filepath.Join(root, "stray.txt"),
	}
	if diff := cmp.Diff(expected, files); diff != "" {
		t.Errorf("listed snapshots mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_RemoveAndPrune(t *testing.T) {
	store, root := newTestStore(t)
	keep := filepath.Join(root, "misc", "keep.out")
	gone := filepath.Join(root, "language", "runtime", "deep", "gone.out")

	for _, p := range []string{keep, gone} {
		if err := store.Write(context.Background(), p, []byte("x")); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	if err := store.Remove(gone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Exists(gone) {
		t.Error("removed snapshot still exists")
	}
	if err := store.Remove(gone); err == nil {
		t.Error("expected error removing a missing snapshot")
	}

	removed, err := store.PruneEmptyDirs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{
		filepath.Join(root, "language", "runtime", "deep"),
		filepath.Join(root, "language", "runtime"),
		filepath.Join(root, "language"),
	}
	if diff := cmp.Diff(expected, removed); diff != "" {
		t.Errorf("pruned dirs mismatch (-want +got):\n%s", diff)
	}
	if !store.Exists(keep) {
		t.Error("pruning removed a live snapshot")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("snapshot root must survive pruning: %v", err)
	}
}
