package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/apperr"
	"github.com/jaywantadh/chunkrelay/internal/protocol"
)

// Registry is the tracker's in-memory file/peer table, serialized by a
// single RWMutex and persisted to disk on every mutation. One lock keeps
// the load-modify-persist sequence atomic without needing a transaction.
type Registry struct {
	mu    sync.RWMutex
	files map[string]*FileRecord
	store *Persister
}

// NewRegistry loads the table from persister and returns a ready Registry.
func NewRegistry(persister *Persister) (*Registry, error) {
	files, err := persister.Load()
	if err != nil {
		return nil, err
	}
	return &Registry{files: files, store: persister}, nil
}

// AnnounceInput is one peer's self-report of what it holds for a file.
// Filename, Size, and ChunksTotal are only required the first time a
// file_id is announced; later announces may omit them.
type AnnounceInput struct {
	PeerID      string
	FileID      string
	IP          string
	Port        int
	Chunks      []int
	Filename    string
	Size        int64
	ChunksTotal int
}

// Announce records a peer's current holdings for a file, creating the
// FileRecord on first sight. It fully overwrites the peer's prior entry:
// announces are a snapshot, not a delta.
func (r *Registry) Announce(in AnnounceInput) error {
	if in.PeerID == "" || in.FileID == "" || in.IP == "" || in.Port <= 0 {
		return apperr.ErrBadRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[in.FileID]
	if !ok {
		if in.Filename == "" || in.Size <= 0 || in.ChunksTotal <= 0 {
			return apperr.ErrUnknownFile
		}
		rec = &FileRecord{
			Filename:  in.Filename,
			Size:      in.Size,
			CreatedAt: time.Now(),
			Chunks:    in.ChunksTotal,
			Peers:     map[string]*PeerEntry{},
		}
		r.files[in.FileID] = rec
	}

	chunks := append([]int(nil), in.Chunks...)
	sort.Ints(chunks)

	rec.Peers[in.PeerID] = &PeerEntry{
		IP:       in.IP,
		Port:     in.Port,
		LastSeen: time.Now(),
		Chunks:   chunks,
	}

	return r.persistLocked()
}

func (r *Registry) persistLocked() error {
	return r.store.Save(r.files)
}

// ListEntry summarizes one file for the /list endpoint.
type ListEntry struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Chunks      int    `json:"chunks"`
	ActivePeers int    `json:"active_peers"`
}

// List returns every known file with its count of currently-live peers.
func (r *Registry) List() map[string]ListEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().Add(-protocol.LivenessWindow)
	out := make(map[string]ListEntry, len(r.files))
	for id, rec := range r.files {
		active := 0
		for _, p := range rec.Peers {
			if p.LastSeen.After(cutoff) {
				active++
			}
		}
		out[id] = ListEntry{
			Filename:    rec.Filename,
			Size:        rec.Size,
			Chunks:      rec.Chunks,
			ActivePeers: active,
		}
	}
	return out
}

// PeerView is one live peer's holdings, as returned by GetFile.
type PeerView struct {
	IP     string `json:"ip"`
	Port   int    `json:"port"`
	Chunks []int  `json:"chunks"`
}

// FileDetail is the full per-peer breakdown for one file, filtered to
// peers whose last announce is still within the liveness window.
type FileDetail struct {
	FileID   string              `json:"file_id"`
	Filename string              `json:"filename"`
	Size     int64               `json:"size"`
	Chunks   int                 `json:"chunks"`
	Peers    map[string]PeerView `json:"peers"`
}

// GetFile returns the live peer set for fileID, or ErrUnknownFile.
func (r *Registry) GetFile(fileID string) (*FileDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.files[fileID]
	if !ok {
		return nil, apperr.ErrUnknownFile
	}

	cutoff := time.Now().Add(-protocol.LivenessWindow)
	peers := make(map[string]PeerView)
	for peerID, p := range rec.Peers {
		if p.LastSeen.After(cutoff) {
			peers[peerID] = PeerView{IP: p.IP, Port: p.Port, Chunks: p.Chunks}
		}
	}

	return &FileDetail{
		FileID:   fileID,
		Filename: rec.Filename,
		Size:     rec.Size,
		Chunks:   rec.Chunks,
		Peers:    peers,
	}, nil
}
