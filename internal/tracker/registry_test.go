package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/apperr"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker-db.json")
	reg, err := NewRegistry(NewPersister(dbPath))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return reg
}

func TestAnnounceCreatesFileOnFirstSight(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Announce(AnnounceInput{
		PeerID: "peer1", FileID: "file1", IP: "127.0.0.1", Port: 9001,
		Chunks: []int{0, 1}, Filename: "a.bin", Size: 2048, ChunksTotal: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	detail, err := reg.GetFile("file1")
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if detail.Filename != "a.bin" || detail.Chunks != 2 {
		t.Errorf("unexpected file detail: %+v", detail)
	}
	if len(detail.Peers) != 1 {
		t.Errorf("expected 1 peer, got %d", len(detail.Peers))
	}
}

func TestAnnounceUnknownFileWithoutMetadataIsRejected(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Announce(AnnounceInput{
		PeerID: "peer1", FileID: "unknown", IP: "127.0.0.1", Port: 9001, Chunks: []int{0},
	})
	if !errors.Is(err, apperr.ErrUnknownFile) {
		t.Fatalf("expected ErrUnknownFile, got %v", err)
	}
}

func TestAnnounceMissingRequiredFieldsIsBadRequest(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Announce(AnnounceInput{FileID: "file1", IP: "127.0.0.1", Port: 9001})
	if !errors.Is(err, apperr.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestGetFileFiltersStalePeers(t *testing.T) {
	reg := newTestRegistry(t)

	if err := reg.Announce(AnnounceInput{
		PeerID: "fresh", FileID: "file1", IP: "127.0.0.1", Port: 9001,
		Chunks: []int{0}, Filename: "a.bin", Size: 100, ChunksTotal: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Manually backdate a second peer past the liveness window.
	reg.mu.Lock()
	reg.files["file1"].Peers["stale"] = &PeerEntry{
		IP: "127.0.0.1", Port: 9002, LastSeen: time.Now().Add(-1 * time.Hour), Chunks: []int{0},
	}
	reg.mu.Unlock()

	detail, err := reg.GetFile("file1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := detail.Peers["stale"]; ok {
		t.Error("expected stale peer to be filtered out")
	}
	if _, ok := detail.Peers["fresh"]; !ok {
		t.Error("expected fresh peer to remain")
	}
}

func TestGetFileUnknown(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.GetFile("nope")
	if !errors.Is(err, apperr.ErrUnknownFile) {
		t.Fatalf("expected ErrUnknownFile, got %v", err)
	}
}

func TestRegistryPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tracker-db.json")

	reg, err := NewRegistry(NewPersister(dbPath))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	if err := reg.Announce(AnnounceInput{
		PeerID: "p", FileID: "f", IP: "127.0.0.1", Port: 9001,
		Chunks: []int{0}, Filename: "x.bin", Size: 10, ChunksTotal: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db file to be written: %v", err)
	}

	reloaded, err := NewRegistry(NewPersister(dbPath))
	if err != nil {
		t.Fatalf("failed to reload registry: %v", err)
	}
	if _, err := reloaded.GetFile("f"); err != nil {
		t.Fatalf("expected file to survive reload: %v", err)
	}
}
