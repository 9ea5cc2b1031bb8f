package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// newTx is the payload for submitting a transaction. Pointers tell a
// missing field apart from a zero value.
type newTx struct {
	Amount *float64 `json:"amount" validate:"required"`
	From   *string  `json:"from" validate:"required"`
	To     *string  `json:"to" validate:"required"`
}

type status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type chainPage struct {
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Chain    []database.Block `json:"chain"`
}

type mempool struct {
	Count int           `json:"count"`
	Trans []database.Tx `json:"transactions"`
}
