package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrPersistFailures is returned by MineNewBlock when the snapshot could not
// be written for too many cycles in a row.
var ErrPersistFailures = errors.New("too many consecutive persistence failures")

// =============================================================================

// MineNewBlock runs one full cycle: the pool is drained into a new block,
// the block is mined without holding the lock, appended to the chain,
// persisted, and published to subscribers. Transactions submitted while
// mining wait in the pool for the next cycle.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()
	cycle, err := s.ledger.BeginCycle()
	s.mu.Unlock()

	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: txs[%d]", cycle.Index, len(cycle.Trans))

	started := time.Now()
	block := database.NewBlock(cycle.Trans, cycle.Index, cycle.PrevBlockHash, cycle.Difficulty)
	err = block.PerformPOW(ctx, s.evHandler)
	s.metrics.ObserveMining(err, block.Header.Nonce, started)

	if err != nil {
		s.evHandler("state: MineNewBlock: MINING: restore txs[%d]: %s", len(cycle.Trans), err)
		s.restore(cycle.Trans)
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	s.mu.Lock()
	if err = s.ledger.Append(block); err != nil {
		s.ledger.Restore(cycle.Trans)
	}
	height, pool := len(s.ledger.Chain), len(s.ledger.Pool)
	s.mu.Unlock()

	if err != nil {
		return database.Block{}, err
	}

	s.metrics.SetSizes(height, pool)

	perr := s.persist()
	s.publish(block)

	if perr != nil {
		return block, perr
	}

	return block, nil
}

// =============================================================================

func (s *State) restore(trans []database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Restore(trans)
}

// persist writes a snapshot for the mining cycle. A failed write leaves the
// block in memory and is retried by the next cycle. An error is returned
// only once the failures in a row reach the configured limit.
func (s *State) persist() error {
	failures, err := s.writeSnapshot()
	if err == nil {
		return nil
	}

	s.evHandler("state: persist: WARNING: failures[%d]: %s", failures, err)

	if failures >= s.maxPersistFailures {
		return fmt.Errorf("%w: %d: %w", ErrPersistFailures, failures, err)
	}

	return nil
}

// writeSnapshot copies the ledger under the read lock and writes it with no
// lock held. Writes are serialized so an older snapshot can't replace a
// newer one. The number of failed writes in a row is returned.
func (s *State) writeSnapshot() (int, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	snapshot := s.ledger.Copy()
	s.mu.RUnlock()

	started := time.Now()
	err := s.storage.Write(snapshot)

	s.persistFailures++
	if err == nil {
		s.persistFailures = 0
	}

	s.metrics.ObservePersist(err, s.persistFailures, started)

	return s.persistFailures, err
}

// publish sends the block to every subscriber without blocking.
func (s *State) publish(block database.Block) {
	if s.events == nil {
		return
	}

	dropped := s.events.Send(block)
	if dropped > 0 {
		s.evHandler("state: publish: blk[%d]: subscribers missed[%d]", block.Header.Index, dropped)
	}

	s.evMetrics.ObserveSend(dropped)
	s.evMetrics.SetSubscribers(s.events.Subscribers())
}
