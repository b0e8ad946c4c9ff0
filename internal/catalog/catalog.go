// Package catalog persists the set of files a peer is actively seeding.
// It deliberately does not persist in-flight DownloadState: only complete
// SharedFile entries survive a restart.
package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// SharedFile is one file a peer holds, in whole or in part, and is
// willing to serve chunks of.
type SharedFile struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Chunks      int    `json:"chunks_total"`
	ChunksHeld  []int  `json:"chunks_held"`
	LocalSource string `json:"local_source"` // whole-file path, if seeded from a single file
	ChunkDir    string `json:"chunk_dir"`    // directory holding <filename>.<i> chunk files
}

// IsComplete reports whether every chunk up to Chunks has been recorded.
func (sf SharedFile) IsComplete() bool {
	if sf.Chunks <= 0 {
		return false
	}
	have := make(map[int]bool, len(sf.ChunksHeld))
	for _, i := range sf.ChunksHeld {
		have[i] = true
	}
	for i := 0; i < sf.Chunks; i++ {
		if !have[i] {
			return false
		}
	}
	return true
}

// Catalog is a BadgerDB-backed map of file_id -> SharedFile, mirrored in
// memory so lookups never touch disk. Map writes happen under mu; the
// BadgerDB write happens after mu is released so I/O never holds the lock.
type Catalog struct {
	mu    sync.Mutex
	files map[string]SharedFile
	db    *badger.DB
}

const keyPrefix = "shared:"

// Open opens (or creates) the BadgerDB at path and loads any persisted
// entries into memory.
func Open(path string) (*Catalog, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	c := &Catalog{files: map[string]SharedFile{}, db: db}

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var sf SharedFile
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &sf)
			}); err != nil {
				return err
			}
			c.files[sf.FileID] = sf
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return c, nil
}

// Put records or replaces sf in the in-memory map, then persists it.
func (c *Catalog) Put(sf SharedFile) error {
	c.mu.Lock()
	c.files[sf.FileID] = sf
	c.mu.Unlock()

	val, err := json.Marshal(sf)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+sf.FileID), val)
	})
}

// Get returns the SharedFile for fileID, if any.
func (c *Catalog) Get(fileID string) (SharedFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sf, ok := c.files[fileID]
	return sf, ok
}

// All returns every currently-catalogued file.
func (c *Catalog) All() []SharedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SharedFile, 0, len(c.files))
	for _, sf := range c.files {
		out = append(out, sf)
	}
	return out
}

// Delete removes fileID from the catalog, in memory and on disk.
func (c *Catalog) Delete(fileID string) error {
	c.mu.Lock()
	delete(c.files, fileID)
	c.mu.Unlock()

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + fileID))
	})
}

// Close closes the underlying BadgerDB.
func (c *Catalog) Close() error {
	return c.db.Close()
}
