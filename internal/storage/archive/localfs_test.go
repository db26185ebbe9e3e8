// internal/storage/archive/localfs_test.go
package archive

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/newthinker/stagestate/internal/config"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte(`{"id":"x"}`)

	if err := fs.Write(ctx, "2026-10-16/report.json", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "2026-10-16/report.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Join(dir, "2026-10-16"))
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestLocalFS_Overwrite(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "r.json", []byte("old"))
	if err := fs.Write(ctx, "r.json", []byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := fs.Read(ctx, "r.json")
	if string(got) != "new" {
		t.Errorf("got %q, want new", got)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.json")
	if exists {
		t.Error("expected false for nonexistent file")
	}

	fs.Write(ctx, "exists.json", []byte("data"))
	exists, _ = fs.Exists(ctx, "exists.json")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_List(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	fs.Write(ctx, "2026-10-01/a.json", []byte("a"))
	fs.Write(ctx, "2026-10-01/b.yaml", []byte("b"))
	fs.Write(ctx, "2026-10-02/c.json", []byte("c"))

	paths, err := fs.List(ctx, "2026-10-01")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(paths)

	if len(paths) != 2 || paths[0] != "2026-10-01/a.json" || paths[1] != "2026-10-01/b.yaml" {
		t.Errorf("unexpected paths: %v", paths)
	}

	all, err := fs.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 paths, got %v", all)
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	paths, err := fs.List(context.Background(), "nope")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestLocalFS_RejectsEscape(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	if err := fs.Write(ctx, "../outside.json", []byte("x")); err == nil {
		t.Error("expected error for path escaping the root")
	}
	if _, err := fs.Read(ctx, "../../etc/passwd"); err == nil {
		t.Error("expected error for path escaping the root")
	}
}

func TestNew(t *testing.T) {
	s, err := New(config.StorageConfig{Type: "localfs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", s)
	}

	s, err = New(config.StorageConfig{Type: "s3", S3: config.S3Config{Bucket: "reports"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*S3Storage); !ok {
		t.Errorf("expected *S3Storage, got %T", s)
	}

	if _, err := New(config.StorageConfig{Type: "ftp"}); err == nil {
		t.Error("expected error for unknown storage type")
	}
}
