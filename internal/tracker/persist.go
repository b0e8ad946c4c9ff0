package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Persister loads and atomically saves the tracker's full file/peer table
// as a single diffable JSON document, mirroring original_source/app.py's
// load_db/save_db.
type Persister struct {
	path string
}

// NewPersister returns a Persister backed by the JSON file at path.
func NewPersister(path string) *Persister {
	return &Persister{path: path}
}

// Load reads the persisted table. A missing or empty file is treated as an
// empty table rather than an error, so a fresh tracker can start cold.
func (p *Persister) Load() (map[string]*FileRecord, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*FileRecord{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return map[string]*FileRecord{}, nil
	}
	files := map[string]*FileRecord{}
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Save writes the table atomically: marshal to a temp file in the same
// directory, then rename over the target so a crash mid-write never
// leaves a truncated or partial document on disk.
func (p *Persister) Save(files map[string]*FileRecord) error {
	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tracker-db-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p.path)
}
