// Package leveldb implements the database.Storage interface on top of a
// LevelDB database holding the encoded ledger under a single key.
package leveldb

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// snapshotKey is where the encoded ledger is stored.
var snapshotKey = []byte("ledger")

// LevelDB represents the storage implementation backed by LevelDB.
type LevelDB struct {
	dbPath string
	db     *leveldb.DB
}

// New opens or creates the LevelDB database at the specified path.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, &database.PersistenceError{Op: "open", Path: dbPath, Err: err}
	}

	return &LevelDB{dbPath: dbPath, db: db}, nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write replaces the stored snapshot. A single Put is atomic in LevelDB and
// the sync option flushes it before returning.
func (l *LevelDB) Write(ledger database.Ledger) error {
	data, err := database.Encode(ledger)
	if err != nil {
		return &database.PersistenceError{Op: "encode", Path: l.dbPath, Err: err}
	}

	if err := l.db.Put(snapshotKey, data, &opt.WriteOptions{Sync: true}); err != nil {
		return &database.PersistenceError{Op: "put", Path: l.dbPath, Err: err}
	}

	return nil
}

// Read loads the stored snapshot.
func (l *LevelDB) Read() (database.Ledger, error) {
	data, err := l.db.Get(snapshotKey, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return database.Ledger{}, database.ErrNoSnapshot

	case err != nil:
		return database.Ledger{}, &database.PersistenceError{Op: "get", Path: l.dbPath, Err: err}
	}

	ledger, err := database.Decode(data)
	if err != nil {
		return database.Ledger{}, &database.PersistenceError{Op: "decode", Path: l.dbPath, Err: err}
	}

	return ledger, nil
}
