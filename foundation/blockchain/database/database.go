// Package database handles all the lower level support for maintaining the
// ledger: blocks, transactions, the chain and pool aggregate, and the
// contract for persisting a snapshot of it.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// ErrNoSnapshot is returned by a Storage when nothing has been written yet.
// It is a valid fresh start state, not a failure.
var ErrNoSnapshot = errors.New("no snapshot exists")

// =============================================================================

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the ledger. A Write must
// replace the previous snapshot atomically.
type Storage interface {
	Write(ledger Ledger) error
	Read() (Ledger, error)
	Close() error
}

// Load reads the ledger from storage. If no snapshot exists a new ledger is
// constructed. The specified difficulty always replaces the persisted value.
func Load(ctx context.Context, strg Storage, difficulty uint) (Ledger, error) {
	if difficulty > digest.Size {
		return Ledger{}, ErrInvalidDifficulty
	}

	ledger, err := strg.Read()
	switch {
	case errors.Is(err, ErrNoSnapshot):
		return NewLedger(ctx, difficulty)

	case err != nil:
		return Ledger{}, err
	}

	if err := ledger.Validate(); err != nil {
		return Ledger{}, &PersistenceError{Op: "validate", Err: err}
	}

	ledger.Difficulty = difficulty

	return ledger, nil
}

// =============================================================================

// PersistenceError is returned when the ledger can't be written, read, or
// decoded.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (pe *PersistenceError) Error() string {
	if pe.Path == "" {
		return fmt.Sprintf("persistence: %s: %s", pe.Op, pe.Err)
	}
	return fmt.Sprintf("persistence: %s %s: %s", pe.Op, pe.Path, pe.Err)
}

// Unwrap provides access to the underlying error.
func (pe *PersistenceError) Unwrap() error {
	return pe.Err
}

// IsPersistenceError checks if an error of type PersistenceError exists.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
