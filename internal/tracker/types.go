package tracker

import "time"

// PeerEntry is a single peer's holdings for one file, as last reported by
// an announce call.
type PeerEntry struct {
	IP       string    `json:"ip"`
	Port     int       `json:"port"`
	LastSeen time.Time `json:"last_seen"`
	Chunks   []int     `json:"chunks"`
}

// FileRecord is the tracker's full knowledge of one shared file: its
// identity, chunk layout, and the set of peers that have announced it.
type FileRecord struct {
	Filename  string                `json:"filename"`
	Size      int64                 `json:"size"`
	CreatedAt time.Time             `json:"created_at"`
	Chunks    int                   `json:"chunks_total"`
	Peers     map[string]*PeerEntry `json:"peers"`
}
