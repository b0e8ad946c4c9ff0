// Package apperr names the error taxonomy shared by the tracker and the
// peer so HTTP layers and retry loops can branch on error identity with
// errors.Is instead of string matching.
package apperr

import "errors"

var (
	// ErrBadRequest means a required announce field was missing or malformed.
	ErrBadRequest = errors.New("bad request")
	// ErrUnknownFile means the file_id is not registered.
	ErrUnknownFile = errors.New("unknown file")
	// ErrUnknownChunk means the chunk index has no data on this peer.
	ErrUnknownChunk = errors.New("unknown chunk")
	// ErrNoPeers means the tracker reported zero active peers for a download.
	ErrNoPeers = errors.New("no active peers")
	// ErrPeerUnavailable means a peer-to-peer chunk fetch failed.
	ErrPeerUnavailable = errors.New("peer unavailable")
	// ErrTrackerUnavailable means a peer-to-tracker call failed.
	ErrTrackerUnavailable = errors.New("tracker unavailable")
	// ErrMergeCorruption means a chunk file was missing at merge time.
	ErrMergeCorruption = errors.New("merge corruption")
)
