package disk_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/disk"
	"github.com/stretchr/testify/suite"
)

type DiskSuite struct {
	suite.Suite
	dir  string
	strg *disk.Disk
}

func TestDiskSuite(t *testing.T) {
	suite.Run(t, new(DiskSuite))
}

func (s *DiskSuite) SetupTest() {
	s.dir = s.T().TempDir()

	strg, err := disk.New(filepath.Join(s.dir, "data", "chain.bin"))
	s.Require().NoError(err)
	s.strg = strg
}

func (s *DiskSuite) TestReadMissing() {
	_, err := s.strg.Read()
	s.Require().ErrorIs(err, database.ErrNoSnapshot)
}

func (s *DiskSuite) TestWriteRead() {
	ledger, err := database.NewLedger(context.Background(), 1)
	s.Require().NoError(err)

	tx, err := database.NewTx(12.5, "a", "b")
	s.Require().NoError(err)
	ledger.Submit(tx)

	s.Require().NoError(s.strg.Write(ledger))

	got, err := s.strg.Read()
	s.Require().NoError(err)
	s.Require().Len(got.Chain, 1)
	s.Require().Equal(ledger.Chain[0].Header, got.Chain[0].Header)
	s.Require().Len(got.Pool, 1)
	s.Require().Equal(tx.ID, got.Pool[0].ID)
	s.Require().True(tx.Amount.Equal(got.Pool[0].Amount))
	s.Require().NoError(got.Validate())
}

func (s *DiskSuite) TestReplaceLeavesNoTempFiles() {
	ledger, err := database.NewLedger(context.Background(), 0)
	s.Require().NoError(err)

	for range 3 {
		tx, err := database.NewTx(1, "a", "b")
		s.Require().NoError(err)
		ledger.Submit(tx)

		s.Require().NoError(s.strg.Write(ledger))
	}

	entries, err := os.ReadDir(filepath.Dir(s.strg.Path()))
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Require().Equal("chain.bin", entries[0].Name())

	got, err := s.strg.Read()
	s.Require().NoError(err)
	s.Require().Len(got.Pool, 3)
}

func (s *DiskSuite) TestReadCorrupt() {
	s.Require().NoError(os.WriteFile(s.strg.Path(), []byte("garbage"), 0600))

	_, err := s.strg.Read()
	s.Require().Error(err)
	s.Require().True(database.IsPersistenceError(err))
	s.Require().False(errors.Is(err, database.ErrNoSnapshot))
}

func (s *DiskSuite) TestWriteUnwritable() {
	strg, err := disk.New(filepath.Join(s.dir, "chain.bin"))
	s.Require().NoError(err)

	// A directory in place of the snapshot makes the rename fail.
	s.Require().NoError(os.Mkdir(filepath.Join(s.dir, "chain.bin"), 0755))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "chain.bin", "x"), nil, 0600))

	ledger, err := database.NewLedger(context.Background(), 0)
	s.Require().NoError(err)

	err = strg.Write(ledger)
	s.Require().Error(err)
	s.Require().True(database.IsPersistenceError(err))
}
