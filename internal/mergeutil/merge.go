// Package mergeutil concatenates numbered chunk files back into a single
// output file, sorted by their trailing integer suffix rather than
// lexicographic filename order.
package mergeutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Merge finds every file matching pattern (a filepath.Glob pattern, e.g.
// "downloads/video.mp4.*"), orders them by the integer after their last
// ".", and concatenates them into outputPath.
func Merge(pattern, outputPath string) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("mergeutil: no chunk files match pattern %q", pattern)
	}

	sort.Slice(matches, func(i, j int) bool {
		return suffixIndex(matches[i]) < suffixIndex(matches[j])
	})

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, chunkPath := range matches {
		if err := appendChunk(out, chunkPath); err != nil {
			return err
		}
	}
	return nil
}

func appendChunk(out *os.File, chunkPath string) error {
	in, err := os.Open(chunkPath)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(out, in)
	return err
}

// suffixIndex extracts the trailing integer after the last "." in path.
// A plain lexicographic sort would put "file.10" before "file.2"; this
// matches the numeric ordering chunks are actually written in.
func suffixIndex(path string) int {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(path[i+1:])
	if err != nil {
		return 0
	}
	return n
}
