// internal/storage/archive/localfs_test.go
package archive

import (
	"context"
	"testing"

	"github.com/prismfin/prism/internal/config"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
	var _ Storage = (*S3Storage)(nil)
}

func TestNew_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	st, err := New(config.ArchiveConfig{Type: "localfs", Path: dir})
	if err != nil {
		t.Fatalf("New localfs: %v", err)
	}
	if _, ok := st.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", st)
	}

	if _, err := New(config.ArchiveConfig{Type: "tape"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestLocalFS_WriteRead(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte("date,close\n2025-01-02,103\n")

	if err := fs.Write(ctx, "uploads/a1/prices.csv", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "uploads/a1/prices.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.csv")
	if exists {
		t.Error("expected false for nonexistent file")
	}

	fs.Write(ctx, "exists.csv", []byte("data"))
	exists, _ = fs.Exists(ctx, "exists.csv")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_List(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	fs.Write(ctx, "uploads/2025/01/a.csv", []byte("a"))
	fs.Write(ctx, "uploads/2025/01/b.csv", []byte("b"))
	fs.Write(ctx, "uploads/2025/02/c.csv", []byte("c"))

	paths, err := fs.List(ctx, "uploads/2025/01")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %d", len(paths))
	}
}

func TestLocalFS_Delete(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	fs.Write(ctx, "delete.csv", []byte("data"))
	if err := fs.Delete(ctx, "delete.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, _ := fs.Exists(ctx, "delete.csv")
	if exists {
		t.Error("expected file to be gone after delete")
	}
}
