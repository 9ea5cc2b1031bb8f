package state

import (
	"slices"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// QueryChain returns the total number of blocks and the requested 1 based
// page of the chain.
func (s *State) QueryChain(page int, pageSize int) (int, []database.Block) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ledger.Chain), s.ledger.Page(page, pageSize)
}

// QueryChainHeight returns the number of blocks in the chain.
func (s *State) QueryChainHeight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ledger.Chain)
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.ledger.Chain)
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, err := s.ledger.LatestBlock()
	if err != nil {
		return database.Block{}
	}

	return block
}

// RetrieveMempool returns a copy of the pool in submission order.
func (s *State) RetrieveMempool() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.ledger.Pool)
}

// QueryMempoolLength returns the number of transactions waiting in the pool.
func (s *State) QueryMempoolLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ledger.Pool)
}

// RetrieveDifficulty returns the difficulty new blocks are mined at.
func (s *State) RetrieveDifficulty() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Difficulty
}
