// Package memory implements the database.Storage interface in memory. It
// is used by tests and by nodes that don't need to survive a restart.
package memory

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Memory keeps the encoded snapshot in memory so the codec is exercised
// the same way it is for the durable implementations.
type Memory struct {
	mu      sync.Mutex
	data    []byte
	writes  int
	failErr error
}

// New constructs an empty Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Fail forces every following Write to return the specified error. Passing
// nil makes writes succeed again.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failErr = err
}

// Writes returns the number of successful writes.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

// Close has nothing to release.
func (m *Memory) Close() error {
	return nil
}

// Write encodes and keeps the ledger.
func (m *Memory) Write(ledger database.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return &database.PersistenceError{Op: "write", Path: "memory", Err: m.failErr}
	}

	data, err := database.Encode(ledger)
	if err != nil {
		return &database.PersistenceError{Op: "encode", Path: "memory", Err: err}
	}

	m.data = data
	m.writes++

	return nil
}

// Read decodes the last ledger written.
func (m *Memory) Read() (database.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return database.Ledger{}, database.ErrNoSnapshot
	}

	ledger, err := database.Decode(m.data)
	if err != nil {
		return database.Ledger{}, &database.PersistenceError{Op: "decode", Path: "memory", Err: err}
	}

	return ledger, nil
}
