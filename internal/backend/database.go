package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DatabaseRepository is the per-application record store backing the WIPI
// database module. Each named database is a directory of record files under
// the app's data root; records are numbered from 1 the way the original
// phone firmware did it.
type DatabaseRepository struct {
	root string
}

// NewDatabaseRepository creates a repository rooted at a per-app directory.
// The app id is combined with a namespace UUID so unrelated apps sharing a
// data dir cannot collide.
func NewDatabaseRepository(dataDir, appID string) *DatabaseRepository {
	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte("wipi-db:"+appID))
	return &DatabaseRepository{
		root: filepath.Join(dataDir, ns.String()),
	}
}

// Open returns a handle to a named database, creating it if needed.
func (r *DatabaseRepository) Open(name string) (*Database, error) {
	dir := filepath.Join(r.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open database %q: %w", name, err)
	}
	return &Database{dir: dir}, nil
}

// Delete removes a named database and all its records.
func (r *DatabaseRepository) Delete(name string) error {
	return os.RemoveAll(filepath.Join(r.root, name))
}

// Database is one named record store.
type Database struct {
	dir string
}

func (d *Database) recordPath(id uint32) string {
	return filepath.Join(d.dir, fmt.Sprintf("%d", id))
}

// Add stores data as a new record and returns its id.
func (d *Database) Add(data []byte) (uint32, error) {
	id := uint32(1)
	for {
		path := d.recordPath(id)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return id, os.WriteFile(path, data, 0o644)
		}
		id++
	}
}

// Get reads a record by id.
func (d *Database) Get(id uint32) ([]byte, error) {
	data, err := os.ReadFile(d.recordPath(id))
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}
	return data, nil
}

// Set overwrites an existing record.
func (d *Database) Set(id uint32, data []byte) error {
	if _, err := os.Stat(d.recordPath(id)); err != nil {
		return fmt.Errorf("record %d: %w", id, err)
	}
	return os.WriteFile(d.recordPath(id), data, 0o644)
}

// Remove deletes a record.
func (d *Database) Remove(id uint32) error {
	return os.Remove(d.recordPath(id))
}

// Count returns the number of records.
func (d *Database) Count() (uint32, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, err
	}
	return uint32(len(entries)), nil
}
