package database

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an amount can't be represented as a
// fixed point decimal value.
var ErrInvalidAmount = errors.New("invalid amount")

// =============================================================================

// Tx is the transactional information between two parties. A Tx is never
// changed after it is constructed.
type Tx struct {
	ID        string          `json:"txid"`      // Hash of the amount, from, to and timestamp.
	Amount    decimal.Decimal `json:"amount"`    // Value being transferred.
	From      string          `json:"from"`      // Identifier of the sending party.
	To        string          `json:"to"`        // Identifier of the receiving party.
	TimeStamp uint64          `json:"timestamp"` // Unix seconds when the transaction was created.
}

// NewTx constructs a new transaction from a floating point amount. The
// amount must be a finite number.
func NewTx(amount float64, from string, to string) (Tx, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Tx{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	return NewTxFromDecimal(decimal.NewFromFloat(amount), from, to), nil
}

// NewTxFromDecimal constructs a new transaction stamped with the current time.
func NewTxFromDecimal(amount decimal.Decimal, from string, to string) Tx {
	tx := Tx{
		Amount:    amount,
		From:      from,
		To:        to,
		TimeStamp: uint64(time.Now().UTC().Unix()),
	}
	tx.ID = tx.hash()

	return tx
}

// Validate checks the transaction id matches the transaction content.
func (tx Tx) Validate() error {
	if hash := tx.hash(); hash != tx.ID {
		return fmt.Errorf("transaction id does not match content, got %s, exp %s", tx.ID, hash)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%s", tx.ID[:min(len(tx.ID), 8)], tx.From, tx.To, tx.Amount)
}

// hash computes the id of the transaction over the amount, from, to and
// timestamp in that order.
func (tx Tx) hash() string {
	return digest.Hash(fmt.Sprintf("%s%s%s%d", tx.Amount.String(), tx.From, tx.To, tx.TimeStamp))
}

// record renders the fields of the transaction that are committed into the
// merkle digest of a block.
func (tx Tx) record() string {
	return fmt.Sprintf("%s%s%s%s%d", tx.ID, tx.Amount.String(), tx.From, tx.To, tx.TimeStamp)
}
