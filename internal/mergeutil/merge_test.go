package mergeutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestMergeOrdersByNumericSuffix(t *testing.T) {
	dir := t.TempDir()

	// Write 12 chunks; a lexicographic sort would place "file.bin.10"
	// before "file.bin.2", which would corrupt the merge.
	for i := 0; i < 12; i++ {
		path := filepath.Join(dir, "file.bin."+strconv.Itoa(i))
		if err := os.WriteFile(path, []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("failed to write chunk %d: %v", i, err)
		}
	}

	outPath := filepath.Join(dir, "out", "file.bin")
	if err := Merge(filepath.Join(dir, "file.bin.*"), outPath); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read merged output: %v", err)
	}

	want := make([]byte, 12)
	for i := range want {
		want[i] = byte(i)
	}
	if string(got) != string(want) {
		t.Errorf("merged bytes out of order: got %v, want %v", got, want)
	}
}

func TestMergeNoMatchesErrors(t *testing.T) {
	dir := t.TempDir()
	err := Merge(filepath.Join(dir, "nothing.*"), filepath.Join(dir, "out.bin"))
	if err == nil {
		t.Error("expected error when no chunk files match pattern")
	}
}
