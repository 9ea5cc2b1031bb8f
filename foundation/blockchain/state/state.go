// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/metrics"
)

// DefaultMaxPersistFailures is the number of snapshot writes in a row that
// can fail before mining gives up.
const DefaultMaxPersistFailures = 5

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	Failed() <-chan error
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Storage            database.Storage
	Difficulty         uint
	MaxPersistFailures int
	Events             *events.Events[database.Block]
	EvHandler          EventHandler
}

// State manages the ledger. The chain, difficulty and pool are guarded by a
// single lock that is never held while mining or writing to storage.
type State struct {
	mu     sync.RWMutex
	ledger database.Ledger

	storage            database.Storage
	evHandler          EventHandler
	events             *events.Events[database.Block]
	maxPersistFailures int

	persistMu       sync.Mutex
	persistFailures int

	metrics   metrics.Ledger
	evMetrics metrics.Events

	Worker Worker
}

// New loads the ledger from storage, or constructs a fresh one, and writes
// an initial snapshot so a storage problem is found at startup.
func New(ctx context.Context, cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	maxPersistFailures := cfg.MaxPersistFailures
	if maxPersistFailures < 1 {
		maxPersistFailures = DefaultMaxPersistFailures
	}

	ev("state: New: loading ledger: difficulty[%d]", cfg.Difficulty)

	ledger, err := database.Load(ctx, cfg.Storage, cfg.Difficulty)
	if err != nil {
		return nil, err
	}

	ev("state: New: ledger loaded: blocks[%d]: pool[%d]", len(ledger.Chain), len(ledger.Pool))

	state := State{
		ledger:             ledger,
		storage:            cfg.Storage,
		evHandler:          ev,
		events:             cfg.Events,
		maxPersistFailures: maxPersistFailures,
		metrics:            metrics.NewLedger(),
		evMetrics:          metrics.NewEvents(),
	}

	if _, err := state.writeSnapshot(); err != nil {
		return nil, err
	}

	state.metrics.SetSizes(len(ledger.Chain), len(ledger.Pool))

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start mining.

	return &state, nil
}

// Shutdown cleanly brings the ledger down. Mining is stopped, a final
// snapshot is written, and the storage is closed.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	s.evHandler("state: shutdown: final snapshot")
	_, err := s.writeSnapshot()

	if cerr := s.storage.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	return err
}
