package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Version is the schema version stamped into every block header.
const Version = "1.0.0"

// ErrInvalidBlock is returned when a block breaks one of the rules of the chain.
var ErrInvalidBlock = errors.New("invalid block")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Index         uint64 `json:"index"`               // Position of the block in the chain.
	Version       string `json:"version"`             // Schema version of the block.
	PrevBlockHash string `json:"previous_block_hash"` // Hash of the previous block, empty for genesis.
	Hash          string `json:"block_hash"`          // The solved POW hash of this block.
	MerkleRoot    string `json:"merkle_root_hash"`    // Digest over the transactions in this block.
	TimeStamp     uint64 `json:"timestamp"`           // Unix seconds when the block was sealed.
	Nonce         uint64 `json:"nonce"`               // Value identified to solve the hash solution.
	Difficulty    uint   `json:"difficulty"`          // Number of 0's needed to solve the hash solution.
}

// MarshalJSON renders the header with a null parent hash for genesis.
func (h BlockHeader) MarshalJSON() ([]byte, error) {
	type header BlockHeader

	out := struct {
		header
		PrevBlockHash *string `json:"previous_block_hash"`
	}{
		header: header(h),
	}

	if h.PrevBlockHash != "" {
		out.PrevBlockHash = &h.PrevBlockHash
	}

	return json.Marshal(out)
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader `json:"header"`
	Trans  []Tx        `json:"transactions"`
}

// NewBlock seals the set of transactions into a new unmined block. The hash
// is provisional until PerformPOW finds a solution.
func NewBlock(trans []Tx, index uint64, prevBlockHash string, difficulty uint) Block {
	if trans == nil {
		trans = []Tx{}
	}

	nb := Block{
		Header: BlockHeader{
			Index:         index,
			Version:       Version,
			PrevBlockHash: prevBlockHash,
			MerkleRoot:    merkleRoot(trans),
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			Nonce:         0,
			Difficulty:    difficulty,
		},
		Trans: trans,
	}
	nb.Header.Hash = nb.Hash()

	return nb
}

// PerformPOW does the work of mining to find a valid hash for the block.
// Pointer semantics are being used since a nonce is being discovered. The
// search has no upper bound; the context is only there so a node can be
// shut down while mining.
func (b *Block) PerformPOW(ctx context.Context, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: PerformPOW: MINING: started: blk[%d]: difficulty[%d]: txs[%d]", b.Header.Index, b.Header.Difficulty, len(b.Trans))
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Header.Index)

	for _, tx := range b.Trans {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	b.Header.Nonce = 0

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		hash := b.Hash()
		if !digest.Solved(hash, b.Header.Difficulty) {
			b.Header.Nonce++
			continue
		}

		b.Header.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.Header.PrevBlockHash, hash, attempts)

		return nil
	}
}

// Hash recomputes the POW hash from the index, timestamp, merkle root and
// nonce of the header.
func (b Block) Hash() string {
	return digest.Hash(fmt.Sprintf("%d%d%s%d", b.Header.Index, b.Header.TimeStamp, b.Header.MerkleRoot, b.Header.Nonce))
}

// ValidateBlock takes a block and validates it to be the next block after
// the specified previous block.
func (b Block) ValidateBlock(previousBlock Block) error {
	nextIndex := previousBlock.Header.Index + 1
	if b.Header.Index != nextIndex {
		return fmt.Errorf("%w: this block is not the next index, got %d, exp %d", ErrInvalidBlock, b.Header.Index, nextIndex)
	}

	if b.Header.PrevBlockHash != previousBlock.Header.Hash {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrInvalidBlock, b.Header.PrevBlockHash, previousBlock.Header.Hash)
	}

	return b.validateContent()
}

// validateGenesis checks the block can be the first block of a chain.
func (b Block) validateGenesis() error {
	if b.Header.Index != 0 {
		return fmt.Errorf("%w: genesis block index is %d", ErrInvalidBlock, b.Header.Index)
	}

	if b.Header.PrevBlockHash != "" {
		return fmt.Errorf("%w: genesis block has a parent %s", ErrInvalidBlock, b.Header.PrevBlockHash)
	}

	if len(b.Trans) != 0 {
		return fmt.Errorf("%w: genesis block has %d transactions", ErrInvalidBlock, len(b.Trans))
	}

	return b.validateContent()
}

// validateContent checks the rules that don't depend on the parent block.
func (b Block) validateContent() error {
	if hash := b.Hash(); hash != b.Header.Hash {
		return fmt.Errorf("%w: block hash doesn't match header, got %s, exp %s", ErrInvalidBlock, b.Header.Hash, hash)
	}

	if !digest.Solved(b.Header.Hash, b.Header.Difficulty) {
		return fmt.Errorf("%w: %s is not solved for difficulty %d", ErrInvalidBlock, b.Header.Hash, b.Header.Difficulty)
	}

	if root := merkleRoot(b.Trans); root != b.Header.MerkleRoot {
		return fmt.Errorf("%w: merkle root does not match transactions, got %s, exp %s", ErrInvalidBlock, b.Header.MerkleRoot, root)
	}

	for _, tx := range b.Trans {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidBlock, err)
		}
	}

	return nil
}

// =============================================================================

// merkleRoot hashes the in order concatenation of every transaction record.
// An empty set of transactions hashes the empty string.
func merkleRoot(trans []Tx) string {
	var b strings.Builder
	for _, tx := range trans {
		b.WriteString(tx.record())
	}

	return digest.Hash(b.String())
}
