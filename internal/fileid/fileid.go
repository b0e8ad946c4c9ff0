// Package fileid generates the opaque 16-character file identifiers used
// by both the splitter (internal/chunking) and the tracker's
// /generate_file_id convenience endpoint.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Generate derives a 16-character hex identifier from the filename, size,
// and the current wall-clock time. IDs are not content-addressed: sharing
// the same file twice produces two different IDs.
func Generate(filename string, size int64, now time.Time) string {
	raw := fmt.Sprintf("%s-%d-%d", filename, size, now.UnixNano())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
