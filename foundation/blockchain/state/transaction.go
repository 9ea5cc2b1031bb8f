package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction into the pool. It will be sealed
// by the next mining cycle that begins after this call returns.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.ledger.Submit(tx)
	height, pool := len(s.ledger.Chain), len(s.ledger.Pool)
	s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: tx[%s]: pool[%d]", tx, pool)

	s.metrics.ObserveSubmit()
	s.metrics.SetSizes(height, pool)

	return nil
}
