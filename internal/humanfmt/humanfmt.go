// Package humanfmt formats byte counts for CLI status output.
package humanfmt

import "github.com/dustin/go-humanize"

// Bytes renders n as a human-readable size, e.g. "3.4 MB".
func Bytes(n int64) string {
	return humanize.Bytes(uint64(n))
}
