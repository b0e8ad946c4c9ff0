package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogPutGet(t *testing.T) {
	dbPath := filepath.Join(os.TempDir(), "chunkrelay_test_catalog_db")
	defer os.RemoveAll(dbPath)

	cat, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	defer cat.Close()

	sf := SharedFile{
		FileID:     "abc123",
		Filename:   "movie.mp4",
		Size:       3 << 20,
		Chunks:     3,
		ChunksHeld: []int{0, 1, 2},
	}
	if err := cat.Put(sf); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	got, ok := cat.Get("abc123")
	if !ok {
		t.Fatal("expected to find file in catalog")
	}
	if got.Filename != sf.Filename || got.Size != sf.Size {
		t.Errorf("retrieved SharedFile does not match: %+v", got)
	}
	if !got.IsComplete() {
		t.Error("expected IsComplete to be true with all chunks held")
	}
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(os.TempDir(), "chunkrelay_test_catalog_reopen_db")
	defer os.RemoveAll(dbPath)

	cat, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	sf := SharedFile{FileID: "xyz", Filename: "doc.pdf", Size: 100, Chunks: 1, ChunksHeld: []int{0}}
	if err := cat.Put(sf); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if err := cat.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen catalog: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("xyz")
	if !ok {
		t.Fatal("expected entry to survive reopen")
	}
	if got.Filename != "doc.pdf" {
		t.Errorf("unexpected filename after reopen: %s", got.Filename)
	}
}

func TestCatalogIsCompleteWithMissingChunk(t *testing.T) {
	sf := SharedFile{Chunks: 3, ChunksHeld: []int{0, 2}}
	if sf.IsComplete() {
		t.Error("expected IsComplete to be false when a chunk is missing")
	}
}

func TestCatalogDelete(t *testing.T) {
	dbPath := filepath.Join(os.TempDir(), "chunkrelay_test_catalog_delete_db")
	defer os.RemoveAll(dbPath)

	cat, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	defer cat.Close()

	cat.Put(SharedFile{FileID: "gone", Filename: "f", Chunks: 1, ChunksHeld: []int{0}})
	if err := cat.Delete("gone"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, ok := cat.Get("gone"); ok {
		t.Error("expected entry to be gone after Delete")
	}
}
