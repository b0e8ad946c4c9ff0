// Package peerserver is the HTTP surface a peer exposes to other peers:
// chunk fetches and a status endpoint.
package peerserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jaywantadh/chunkrelay/internal/apperr"
	"github.com/jaywantadh/chunkrelay/internal/catalog"
	"github.com/jaywantadh/chunkrelay/internal/downloader"
	"github.com/jaywantadh/chunkrelay/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Server wires the peer's catalog and active downloads into an HTTP mux.
type Server struct {
	catalog   *catalog.Catalog
	downloads *downloader.Manager
	peerID    string
	log       *logrus.Logger
}

// New returns a Server ready to mount with NewMux.
func New(cat *catalog.Catalog, downloads *downloader.Manager, peerID string, log *logrus.Logger) *Server {
	return &Server{catalog: cat, downloads: downloads, peerID: peerID, log: log}
}

// NewMux builds the HTTP handler: GET /chunk and GET /status.
func (s *Server) NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /chunk", s.handleChunk)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	idxStr := r.URL.Query().Get("chunk_index")
	idx, err := strconv.Atoi(idxStr)
	if fileID == "" || err != nil {
		writeError(w, http.StatusBadRequest, apperr.ErrBadRequest)
		return
	}

	sf, ok := s.catalog.Get(fileID)
	if !ok {
		writeError(w, http.StatusNotFound, apperr.ErrUnknownFile)
		return
	}

	if sf.LocalSource != "" {
		f, err := os.Open(sf.LocalSource)
		if err != nil {
			writeError(w, http.StatusNotFound, apperr.ErrUnknownChunk)
			return
		}
		defer f.Close()

		offset := int64(idx) * protocol.ChunkSize
		buf := make([]byte, protocol.ChunkSize)
		n, err := f.ReadAt(buf, offset)
		if n == 0 && err != nil {
			writeError(w, http.StatusNotFound, apperr.ErrUnknownChunk)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf[:n])
		return
	}

	chunkPath := filepath.Join(sf.ChunkDir, fmt.Sprintf("%s.%d", sf.Filename, idx))
	data, err := os.ReadFile(chunkPath)
	if err != nil {
		writeError(w, http.StatusNotFound, apperr.ErrUnknownChunk)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"peer_id":          s.peerID,
		"shared_files":     s.catalog.All(),
		"active_downloads": s.downloads.Snapshot(),
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
