package tracker

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/apperr"
	"github.com/jaywantadh/chunkrelay/internal/fileid"
	"github.com/sirupsen/logrus"
)

// NewServer wires the tracker's HTTP surface over registry: announce,
// list, per-file detail, and file_id generation.
func NewServer(reg *Registry, log *logrus.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /announce", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PeerID      string `json:"peer_id"`
			FileID      string `json:"file_id"`
			Port        int    `json:"port"`
			Chunks      []int  `json:"chunks"`
			Filename    string `json:"filename"`
			Size        int64  `json:"size"`
			ChunksTotal int    `json:"chunks_total"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, log, apperr.ErrBadRequest)
			return
		}

		ip := remoteIP(r)
		err := reg.Announce(AnnounceInput{
			PeerID:      body.PeerID,
			FileID:      body.FileID,
			IP:          ip,
			Port:        body.Port,
			Chunks:      body.Chunks,
			Filename:    body.Filename,
			Size:        body.Size,
			ChunksTotal: body.ChunksTotal,
		})
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	mux.HandleFunc("GET /list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]map[string]ListEntry{"files": reg.List()})
	})

	mux.HandleFunc("GET /file/{file_id}", func(w http.ResponseWriter, r *http.Request) {
		detail, err := reg.GetFile(r.PathValue("file_id"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	})

	mux.HandleFunc("POST /generate_file_id", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Filename == "" {
			writeError(w, log, apperr.ErrBadRequest)
			return
		}
		id := fileid.Generate(body.Filename, body.Size, time.Now())
		writeJSON(w, http.StatusOK, map[string]string{"file_id": id})
	})

	return mux
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log *logrus.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnknownFile):
		status = http.StatusNotFound
	default:
		log.WithError(err).Error("tracker: unhandled error")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
