// Package storage selects one of the database.Storage implementations by
// name.
package storage

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/leveldb"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
)

// Set of storage implementations that can be selected.
const (
	Disk    = "disk"
	LevelDB = "leveldb"
	Memory  = "memory"
)

// Open constructs the named storage implementation for the specified path.
// The path is ignored for memory storage.
func Open(kind string, dbPath string) (database.Storage, error) {
	switch kind {
	case Disk:
		return disk.New(dbPath)

	case LevelDB:
		return leveldb.New(dbPath)

	case Memory:
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown storage %q, use %s, %s or %s", kind, Disk, LevelDB, Memory)
}
