// Package disk implements the database.Storage interface over a single
// snapshot file that is replaced atomically on every write.
package disk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Disk represents the storage implementation for reading and writing the
// ledger snapshot to a file on disk.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use. The directory holding the snapshot
// file is created if it doesn't exist.
func New(dbPath string) (*Disk, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &database.PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}

	return &Disk{dbPath: dbPath}, nil
}

// Path returns the location of the snapshot file.
func (d *Disk) Path() string {
	return d.dbPath
}

// Close in this implementation has nothing to do since the file is opened
// and closed on every read and write.
func (d *Disk) Close() error {
	return nil
}

// Write encodes the ledger and replaces the snapshot file. The data is
// written to a temporary file in the same directory, flushed, and then
// renamed over the snapshot so a reader never sees a partial file.
func (d *Disk) Write(ledger database.Ledger) error {
	data, err := database.Encode(ledger)
	if err != nil {
		return &database.PersistenceError{Op: "encode", Path: d.dbPath, Err: err}
	}

	dir := filepath.Dir(d.dbPath)

	f, err := os.CreateTemp(dir, filepath.Base(d.dbPath)+".*.tmp")
	if err != nil {
		return &database.PersistenceError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := f.Name()

	if err := writeAndSync(f, data); err != nil {
		os.Remove(tmpPath)
		return &database.PersistenceError{Op: "write", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, d.dbPath); err != nil {
		os.Remove(tmpPath)
		return &database.PersistenceError{Op: "rename", Path: d.dbPath, Err: err}
	}

	// Flush the directory entry so the rename survives a crash.
	if df, err := os.Open(dir); err == nil {
		df.Sync()
		df.Close()
	}

	return nil
}

// Read loads the snapshot file and decodes the ledger. If the file doesn't
// exist database.ErrNoSnapshot is returned.
func (d *Disk) Read() (database.Ledger, error) {
	data, err := os.ReadFile(d.dbPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return database.Ledger{}, database.ErrNoSnapshot

	case err != nil:
		return database.Ledger{}, &database.PersistenceError{Op: "read", Path: d.dbPath, Err: err}
	}

	ledger, err := database.Decode(data)
	if err != nil {
		return database.Ledger{}, &database.PersistenceError{Op: "decode", Path: d.dbPath, Err: err}
	}

	return ledger, nil
}

// =============================================================================

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
