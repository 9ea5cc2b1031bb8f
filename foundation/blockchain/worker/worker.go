// Package worker implements the mining loop for the ledger.
package worker

import (
	"context"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"go.uber.org/ratelimit"
)

// Worker manages the POW workflow for the ledger.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	shut      chan struct{}
	shutOnce  sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	failed    chan error
	limiter   ratelimit.Limiter
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up the mining goroutine. A nil limiter mines without pause.
func Run(st *state.State, limiter ratelimit.Limiter, evHandler state.EventHandler) *Worker {
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}

	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:     st,
		shut:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		failed:    make(chan error, 1),
		limiter:   limiter,
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. A mining operation in
// progress is cancelled and its transactions go back to the pool.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: signal cancel mining")
		w.cancel()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// Failed returns a channel that receives an error if mining had to stop
// because the ledger can no longer be persisted.
func (w *Worker) Failed() <-chan error {
	return w.failed
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
