// Package trackerclient is the peer-side HTTP client for talking to a
// tracker: announce, list, file lookup, and file_id generation.
package trackerclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jaywantadh/chunkrelay/internal/apperr"
	"github.com/jaywantadh/chunkrelay/internal/protocol"
)

// Client talks to a single tracker over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client pointed at baseURL (e.g. "http://localhost:8000").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: protocol.TrackerTimeout},
	}
}

// AnnounceRequest is the wire body for POST /announce. It mirrors, but
// deliberately does not import, internal/tracker's AnnounceInput: peer and
// tracker are independent processes that only agree on the wire format.
type AnnounceRequest struct {
	PeerID      string `json:"peer_id"`
	FileID      string `json:"file_id"`
	Port        int    `json:"port"`
	Chunks      []int  `json:"chunks"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ChunksTotal int    `json:"chunks_total,omitempty"`
}

// PeerView is one live peer's holdings, as reported by GET /file/{id}.
type PeerView struct {
	IP     string `json:"ip"`
	Port   int    `json:"port"`
	Chunks []int  `json:"chunks"`
}

// FileDetail is the full response body for GET /file/{id}.
type FileDetail struct {
	FileID   string              `json:"file_id"`
	Filename string              `json:"filename"`
	Size     int64               `json:"size"`
	Chunks   int                 `json:"chunks"`
	Peers    map[string]PeerView `json:"peers"`
}

// FileSummary is one entry in the GET /list response.
type FileSummary struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Chunks      int    `json:"chunks"`
	ActivePeers int    `json:"active_peers"`
}

// Announce reports the local peer's current holdings for a file.
func (c *Client) Announce(req AnnounceRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+"/announce", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrTrackerUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: announce returned status %d", apperr.ErrTrackerUnavailable, resp.StatusCode)
	}
	return nil
}

// List returns every file the tracker knows about.
func (c *Client) List() (map[string]FileSummary, error) {
	resp, err := c.http.Get(c.baseURL + "/list")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTrackerUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list returned status %d", apperr.ErrTrackerUnavailable, resp.StatusCode)
	}
	var out struct {
		Files map[string]FileSummary `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// GetFile returns the live peer set for fileID.
func (c *Client) GetFile(fileID string) (*FileDetail, error) {
	resp, err := c.http.Get(c.baseURL + "/file/" + fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTrackerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.ErrUnknownFile
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: file lookup returned status %d", apperr.ErrTrackerUnavailable, resp.StatusCode)
	}

	var detail FileDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GenerateFileID asks the tracker to mint a file_id for a not-yet-known
// filename/size pair.
func (c *Client) GenerateFileID(filename string, size int64) (string, error) {
	body, err := json.Marshal(map[string]any{"filename": filename, "size": size})
	if err != nil {
		return "", err
	}
	resp, err := c.http.Post(c.baseURL+"/generate_file_id", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrTrackerUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: generate_file_id returned status %d", apperr.ErrTrackerUnavailable, resp.StatusCode)
	}
	var out struct {
		FileID string `json:"file_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.FileID, nil
}
