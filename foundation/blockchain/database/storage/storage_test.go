package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage"
	"github.com/stretchr/testify/require"
)

func Test_Open(t *testing.T) {
	dir := t.TempDir()

	for _, kind := range []string{storage.Disk, storage.LevelDB, storage.Memory} {
		strg, err := storage.Open(kind, filepath.Join(dir, kind))
		require.NoError(t, err, kind)
		require.NoError(t, strg.Close(), kind)
	}

	_, err := storage.Open("tape", dir)
	require.Error(t, err)
}
