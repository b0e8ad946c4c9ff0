package chunking

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaywantadh/chunkrelay/internal/protocol"
)

func TestSplitProducesExpectedChunkCount(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "input.bin")

	data := bytes.Repeat([]byte{0xAB}, protocol.ChunkSize*2+137)
	if err := os.WriteFile(srcPath, data, 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	uploadDir := filepath.Join(dir, "uploads")
	desc, err := Split(srcPath, uploadDir)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if desc.NumChunks != 3 {
		t.Errorf("expected 3 chunks, got %d", desc.NumChunks)
	}
	if desc.Size != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), desc.Size)
	}
	if len(desc.ChunkPaths) != 3 {
		t.Fatalf("expected 3 chunk paths, got %d", len(desc.ChunkPaths))
	}

	var reassembled []byte
	for _, p := range desc.ChunkPaths {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("failed to read chunk %s: %v", p, err)
		}
		reassembled = append(reassembled, b...)
	}
	if !bytes.Equal(reassembled, data) {
		t.Error("reassembled chunk bytes do not match original file")
	}
}

func TestSplitEmptyFileProducesOneChunk(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(srcPath, nil, 0o644); err != nil {
		t.Fatalf("failed to write empty file: %v", err)
	}

	desc, err := Split(srcPath, filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if desc.NumChunks != 1 {
		t.Errorf("expected 1 chunk for empty file, got %d", desc.NumChunks)
	}
}

func TestSplitGeneratesDistinctFileIDs(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "input.bin")
	if err := os.WriteFile(srcPath, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	first, err := Split(srcPath, filepath.Join(dir, "uploads1"))
	if err != nil {
		t.Fatalf("first Split failed: %v", err)
	}
	second, err := Split(srcPath, filepath.Join(dir, "uploads2"))
	if err != nil {
		t.Fatalf("second Split failed: %v", err)
	}
	if first.FileID == second.FileID {
		t.Error("expected distinct file IDs for two independent shares of the same file")
	}
}
