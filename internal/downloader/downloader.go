// Package downloader drives the peer's chunk-acquisition loop: given a
// file_id, it finds peers via the tracker and pulls chunks in ascending
// order until the file is complete, then merges them.
package downloader

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/announcer"
	"github.com/jaywantadh/chunkrelay/internal/apperr"
	"github.com/jaywantadh/chunkrelay/internal/catalog"
	"github.com/jaywantadh/chunkrelay/internal/mergeutil"
	"github.com/jaywantadh/chunkrelay/internal/protocol"
	"github.com/jaywantadh/chunkrelay/internal/trackerclient"
	"github.com/sirupsen/logrus"
)

// Manager owns every download a peer currently has in flight or has
// finished since process start.
type Manager struct {
	mu          sync.Mutex
	downloads   map[string]*State
	tracker     *trackerclient.Client
	catalog     *catalog.Catalog
	peerID      string
	port        int
	downloadDir string
	httpClient  *http.Client
	log         *logrus.Logger
	announcer   *announcer.Announcer
}

// NewManager returns a download Manager for one peer process.
func NewManager(tracker *trackerclient.Client, cat *catalog.Catalog, peerID string, port int, downloadDir string, log *logrus.Logger) *Manager {
	return &Manager{
		downloads:   map[string]*State{},
		tracker:     tracker,
		catalog:     cat,
		peerID:      peerID,
		port:        port,
		downloadDir: downloadDir,
		httpClient:  &http.Client{Timeout: protocol.ChunkFetchTimeout},
		log:         log,
	}
}

// SetAnnouncer wires the peer's periodic re-announcer into the Manager so
// a freshly completed download starts advertising itself as a seed instead
// of aging out of the tracker's liveness window after one announce.
func (m *Manager) SetAnnouncer(ann *announcer.Announcer) {
	m.announcer = ann
}

// Start looks up fileID on the tracker and, if peers are available,
// begins pulling chunks in a background goroutine.
func (m *Manager) Start(fileID string) error {
	detail, err := m.tracker.GetFile(fileID)
	if errors.Is(err, apperr.ErrTrackerUnavailable) {
		return fmt.Errorf("%w: %v", apperr.ErrNoPeers, err)
	}
	if err != nil {
		return err
	}
	if len(detail.Peers) == 0 {
		return apperr.ErrNoPeers
	}

	state := newState(fileID, detail.Filename, detail.Chunks)

	m.mu.Lock()
	m.downloads[fileID] = state
	m.mu.Unlock()

	go m.run(state, detail.Peers)
	return nil
}

func (m *Manager) run(state *State, initialPeers map[string]trackerclient.PeerView) {
	peers := initialPeers

	if err := os.MkdirAll(m.downloadDir, 0o755); err != nil {
		m.log.WithError(err).Error("downloader: cannot create download dir")
		return
	}

	m.announce(state)

	for idx := 0; idx < state.TotalChunks; idx++ {
		if !state.isActive() {
			m.log.WithField("file_id", state.FileID).Info("downloader: cancelled")
			return
		}
		if state.hasChunk(idx) {
			continue
		}

		if m.fetchFromAnyPeer(state, idx, peers) {
			m.announce(state)
			continue
		}

		m.log.WithFields(logrus.Fields{"file_id": state.FileID, "chunk": idx}).Warn("downloader: chunk fetch failed, retrying")
		time.Sleep(protocol.ChunkRetryBackoff)

		if detail, err := m.tracker.GetFile(state.FileID); err == nil {
			peers = detail.Peers
		}
		idx-- // retry the same chunk after refreshing the peer set
	}

	if state.isComplete() {
		if err := m.finish(state); err != nil {
			m.log.WithError(err).WithField("file_id", state.FileID).Error("downloader: finish failed")
		}
	}
}

func (m *Manager) fetchFromAnyPeer(state *State, idx int, peers map[string]trackerclient.PeerView) bool {
	for peerID, info := range peers {
		hasChunk := false
		for _, c := range info.Chunks {
			if c == idx {
				hasChunk = true
				break
			}
		}
		if !hasChunk {
			continue
		}

		url := fmt.Sprintf("http://%s:%d/chunk?file_id=%s&chunk_index=%d", info.IP, info.Port, state.FileID, idx)
		resp, err := m.httpClient.Get(url)
		if err != nil {
			m.log.WithError(err).WithField("peer", peerID).Debug("downloader: peer fetch failed")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}

		chunkPath := filepath.Join(m.downloadDir, fmt.Sprintf("%s.%d", state.Filename, idx))
		if err := os.WriteFile(chunkPath, data, 0o644); err != nil {
			m.log.WithError(err).Error("downloader: cannot write chunk")
			continue
		}

		state.markDownloaded(idx)
		return true
	}
	return false
}

func (m *Manager) announce(state *State) {
	err := m.tracker.Announce(trackerclient.AnnounceRequest{
		PeerID: m.peerID,
		FileID: state.FileID,
		Port:   m.port,
		Chunks: state.snapshot(),
	})
	if err != nil {
		m.log.WithError(err).Debug("downloader: announce failed")
	}
}

func (m *Manager) finish(state *State) error {
	outputPath := filepath.Join(m.downloadDir, state.Filename)
	pattern := filepath.Join(m.downloadDir, state.Filename+".*")

	if err := mergeutil.Merge(pattern, outputPath); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrMergeCorruption, err)
	}

	for i := 0; i < state.TotalChunks; i++ {
		os.Remove(filepath.Join(m.downloadDir, fmt.Sprintf("%s.%d", state.Filename, i)))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}

	chunksHeld := make([]int, state.TotalChunks)
	for i := range chunksHeld {
		chunksHeld[i] = i
	}

	err = m.catalog.Put(catalog.SharedFile{
		FileID:      state.FileID,
		Filename:    state.Filename,
		Size:        info.Size(),
		Chunks:      state.TotalChunks,
		ChunksHeld:  chunksHeld,
		LocalSource: outputPath,
	})
	if err != nil {
		m.log.WithError(err).Error("downloader: failed to catalog completed file")
	}

	m.announce(state)
	if m.announcer != nil {
		m.announcer.Watch(state.FileID)
	}
	m.log.WithField("file_id", state.FileID).Info("downloader: download complete")
	return nil
}

// Cancel stops an in-flight download. Already-written chunk files are
// left on disk; the loop notices on its next chunk-boundary check.
func (m *Manager) Cancel(fileID string) error {
	m.mu.Lock()
	state, ok := m.downloads[fileID]
	m.mu.Unlock()
	if !ok {
		return apperr.ErrUnknownFile
	}
	state.cancel()
	return nil
}

// Snapshot returns a JSON-safe view of every download this Manager knows
// about, for the /status endpoint.
func (m *Manager) Snapshot() map[string]StatusView {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]StatusView, len(m.downloads))
	for id, state := range m.downloads {
		downloaded := state.snapshot()
		progress := 0.0
		if state.TotalChunks > 0 {
			progress = float64(len(downloaded)) / float64(state.TotalChunks) * 100
		}
		out[id] = StatusView{
			Filename:         state.Filename,
			TotalChunks:      state.TotalChunks,
			DownloadedChunks: downloaded,
			Active:           state.isActive(),
			Progress:         progress,
		}
	}
	return out
}
