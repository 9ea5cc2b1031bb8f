package worker

import (
	"errors"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// miningOperations handles mining. A new cycle begins as soon as the
// previous one completes, paced only by the limiter.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		w.limiter.Take()

		if w.isShutdown() {
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}

		if !w.runMiningOperation() {
			return
		}
	}
}

// runMiningOperation performs a single mining cycle. It returns false when
// mining can't continue.
func (w *Worker) runMiningOperation() bool {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	t := time.Now()
	block, err := w.state.MineNewBlock(w.ctx)
	duration := time.Since(t)

	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

	switch {
	case err == nil:
		w.evHandler("worker: runMiningOperation: MINING: blk[%d]: hash[%s]: txs[%d]", block.Header.Index, block.Header.Hash, len(block.Trans))
		return true

	case w.ctx.Err() != nil:
		w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		return false

	case errors.Is(err, state.ErrPersistFailures):
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		select {
		case w.failed <- err:
		default:
		}
		return false

	default:
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		return true
	}
}
