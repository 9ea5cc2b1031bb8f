package database

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Set of errors related to the ledger aggregate.
var (
	ErrEmptyChain        = errors.New("chain is empty")
	ErrInvalidDifficulty = fmt.Errorf("difficulty can't be greater than %d", digest.Size)
)

// =============================================================================

// Ledger is the chain of sealed blocks, the mining difficulty, and the pool
// of transactions waiting for the next block. None of the methods are safe
// for concurrent use; the state package owns access to a Ledger.
type Ledger struct {
	Chain      []Block `json:"chain"`
	Difficulty uint    `json:"difficulty"`
	Pool       []Tx    `json:"memory_pool"`
}

// Cycle is what is captured from the ledger to mine the next block.
type Cycle struct {
	Trans         []Tx
	Index         uint64
	PrevBlockHash string
	Difficulty    uint
}

// NewLedger constructs a ledger holding a single mined genesis block.
func NewLedger(ctx context.Context, difficulty uint) (Ledger, error) {
	if difficulty > digest.Size {
		return Ledger{}, ErrInvalidDifficulty
	}

	genesis := NewBlock(nil, 0, "", difficulty)
	if err := genesis.PerformPOW(ctx, nil); err != nil {
		return Ledger{}, fmt.Errorf("mining genesis: %w", err)
	}

	ledger := Ledger{
		Chain:      []Block{genesis},
		Difficulty: difficulty,
		Pool:       []Tx{},
	}

	return ledger, nil
}

// LatestBlock returns the last block in the chain.
func (l *Ledger) LatestBlock() (Block, error) {
	if len(l.Chain) == 0 {
		return Block{}, ErrEmptyChain
	}

	return l.Chain[len(l.Chain)-1], nil
}

// Submit adds the transaction to the end of the pool.
func (l *Ledger) Submit(tx Tx) {
	l.Pool = append(l.Pool, tx)
}

// BeginCycle takes every transaction out of the pool and captures what is
// needed to seal the next block on top of the latest block.
func (l *Ledger) BeginCycle() (Cycle, error) {
	latest, err := l.LatestBlock()
	if err != nil {
		return Cycle{}, err
	}

	trans := l.Pool
	l.Pool = []Tx{}

	cycle := Cycle{
		Trans:         trans,
		Index:         latest.Header.Index + 1,
		PrevBlockHash: latest.Header.Hash,
		Difficulty:    l.Difficulty,
	}

	return cycle, nil
}

// Append validates the block against the latest block and adds it to the
// end of the chain.
func (l *Ledger) Append(block Block) error {
	latest, err := l.LatestBlock()
	if err != nil {
		return err
	}

	if err := block.ValidateBlock(latest); err != nil {
		return err
	}

	l.Chain = append(l.Chain, block)

	return nil
}

// Restore puts transactions taken by BeginCycle back at the front of the
// pool, ahead of anything submitted since.
func (l *Ledger) Restore(trans []Tx) {
	if len(trans) == 0 {
		return
	}

	l.Pool = append(slices.Clone(trans), l.Pool...)
}

// Validate walks the full chain and checks every block against the rules.
func (l Ledger) Validate() error {
	if len(l.Chain) == 0 {
		return ErrEmptyChain
	}

	if err := l.Chain[0].validateGenesis(); err != nil {
		return fmt.Errorf("blk[0]: %w", err)
	}

	for i := 1; i < len(l.Chain); i++ {
		if err := l.Chain[i].ValidateBlock(l.Chain[i-1]); err != nil {
			return fmt.Errorf("blk[%d]: %w", i, err)
		}
	}

	for _, tx := range l.Pool {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("pool: %w", err)
		}
	}

	return nil
}

// Copy returns a ledger that shares no slices with the original. Blocks and
// transactions are immutable so a shallow copy of each slice is enough.
func (l Ledger) Copy() Ledger {
	return Ledger{
		Chain:      slices.Clone(l.Chain),
		Difficulty: l.Difficulty,
		Pool:       slices.Clone(l.Pool),
	}
}

// Page returns the blocks for the specified 1 based page. A page past the
// end of the chain returns an empty set.
func (l Ledger) Page(page int, pageSize int) []Block {
	if page < 1 || pageSize < 1 {
		return []Block{}
	}

	offset := (page - 1) * pageSize
	if offset/pageSize != page-1 || offset >= len(l.Chain) {
		return []Block{}
	}

	end := min(offset+pageSize, len(l.Chain))
	if end < offset {
		end = len(l.Chain)
	}

	return slices.Clone(l.Chain[offset:end])
}
