package database

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/shopspring/decimal"
)

// snapshotFormat marks an encoded ledger so a file written by something
// else is rejected instead of decoded into garbage.
const snapshotFormat = "ardanlabs/ledger/snapshot/v1"

// ledgerRecord represents what is encoded to storage.
type ledgerRecord struct {
	Format     string
	Difficulty uint64
	Chain      []blockRecord
	Pool       []txRecord
}

type blockRecord struct {
	Index         uint64
	Version       string
	PrevBlockHash string
	Hash          string
	MerkleRoot    string
	TimeStamp     uint64
	Nonce         uint64
	Difficulty    uint64
	Trans         []txRecord
}

type txRecord struct {
	ID        string
	Amount    string
	From      string
	To        string
	TimeStamp uint64
}

// =============================================================================

// Encode serializes the entire ledger into its binary RLP form.
func Encode(ledger Ledger) ([]byte, error) {
	rec := ledgerRecord{
		Format:     snapshotFormat,
		Difficulty: uint64(ledger.Difficulty),
		Chain:      make([]blockRecord, len(ledger.Chain)),
		Pool:       toTxRecords(ledger.Pool),
	}

	for i, block := range ledger.Chain {
		rec.Chain[i] = blockRecord{
			Index:         block.Header.Index,
			Version:       block.Header.Version,
			PrevBlockHash: block.Header.PrevBlockHash,
			Hash:          block.Header.Hash,
			MerkleRoot:    block.Header.MerkleRoot,
			TimeStamp:     block.Header.TimeStamp,
			Nonce:         block.Header.Nonce,
			Difficulty:    uint64(block.Header.Difficulty),
			Trans:         toTxRecords(block.Trans),
		}
	}

	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}

	return data, nil
}

// Decode deserializes a ledger that was produced by Encode.
func Decode(data []byte) (Ledger, error) {
	var rec ledgerRecord
	if err := rlp.DecodeBytes(data, &rec); err != nil {
		return Ledger{}, fmt.Errorf("decode ledger: %w", err)
	}

	if rec.Format != snapshotFormat {
		return Ledger{}, fmt.Errorf("decode ledger: unknown format %q", rec.Format)
	}

	pool, err := toTrans(rec.Pool)
	if err != nil {
		return Ledger{}, fmt.Errorf("decode ledger: pool: %w", err)
	}

	ledger := Ledger{
		Chain:      make([]Block, len(rec.Chain)),
		Difficulty: uint(rec.Difficulty),
		Pool:       pool,
	}

	for i, br := range rec.Chain {
		trans, err := toTrans(br.Trans)
		if err != nil {
			return Ledger{}, fmt.Errorf("decode ledger: blk[%d]: %w", i, err)
		}

		ledger.Chain[i] = Block{
			Header: BlockHeader{
				Index:         br.Index,
				Version:       br.Version,
				PrevBlockHash: br.PrevBlockHash,
				Hash:          br.Hash,
				MerkleRoot:    br.MerkleRoot,
				TimeStamp:     br.TimeStamp,
				Nonce:         br.Nonce,
				Difficulty:    uint(br.Difficulty),
			},
			Trans: trans,
		}
	}

	return ledger, nil
}

// =============================================================================

func toTxRecords(trans []Tx) []txRecord {
	recs := make([]txRecord, len(trans))
	for i, tx := range trans {
		recs[i] = txRecord{
			ID:        tx.ID,
			Amount:    tx.Amount.String(),
			From:      tx.From,
			To:        tx.To,
			TimeStamp: tx.TimeStamp,
		}
	}

	return recs
}

func toTrans(recs []txRecord) ([]Tx, error) {
	trans := make([]Tx, len(recs))
	for i, rec := range recs {
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return nil, fmt.Errorf("tx[%s]: %w: %s", rec.ID, ErrInvalidAmount, err)
		}

		trans[i] = Tx{
			ID:        rec.ID,
			Amount:    amount,
			From:      rec.From,
			To:        rec.To,
			TimeStamp: rec.TimeStamp,
		}
	}

	return trans, nil
}
