// Package chunking splits files into fixed-size chunks on disk and
// generates the file identifiers that name them in the tracker.
package chunking

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/fileid"
	"github.com/jaywantadh/chunkrelay/internal/protocol"
)

// Descriptor is the result of splitting a file: its tracker identity plus
// the on-disk paths of every chunk, in order.
type Descriptor struct {
	FileID     string
	Filename   string
	Size       int64
	NumChunks  int
	ChunkPaths []string
}

// Split reads srcPath and writes protocol.ChunkSize-sized chunk files into
// uploadDir, named <basename>.<i> starting at 0.
func Split(srcPath, uploadDir string) (*Descriptor, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, err
	}

	basename := filepath.Base(srcPath)
	numChunks := protocol.ExpectedChunks(info.Size())
	paths := make([]string, 0, numChunks)

	buf := make([]byte, protocol.ChunkSize)
	for i := 0; ; i++ {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			chunkPath := filepath.Join(uploadDir, fmt.Sprintf("%s.%d", basename, i))
			if err := os.WriteFile(chunkPath, buf[:n], 0o644); err != nil {
				return nil, err
			}
			paths = append(paths, chunkPath)
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}

	if len(paths) == 0 {
		// Zero-byte file: still emit one empty chunk so NumChunks stays 1.
		chunkPath := filepath.Join(uploadDir, fmt.Sprintf("%s.0", basename))
		if err := os.WriteFile(chunkPath, nil, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, chunkPath)
	}

	return &Descriptor{
		FileID:     fileid.Generate(basename, info.Size(), time.Now()),
		Filename:   basename,
		Size:       info.Size(),
		NumChunks:  len(paths),
		ChunkPaths: paths,
	}, nil
}
