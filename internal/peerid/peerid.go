// Package peerid generates the opaque peer identifiers peers present to
// the tracker on every announce.
package peerid

import "github.com/google/uuid"

// Generate returns a new random peer ID.
func Generate() string {
	return uuid.New().String()
}
