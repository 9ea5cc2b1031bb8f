package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"
)

func Test_Mining(t *testing.T) {
	strg := memory.New()
	evts := events.New[database.Block](1000)
	sub := evts.Acquire("test")

	st, err := state.New(context.Background(), state.Config{
		Storage:    strg,
		Difficulty: 1,
		Events:     evts,
	})
	require.NoError(t, err)

	w := worker.Run(st, ratelimit.New(100), nil)

	tx, err := database.NewTx(7, "a", "b")
	require.NoError(t, err)
	require.NoError(t, st.SubmitTransaction(tx))

	var lastIndex uint64
	timeout := time.After(10 * time.Second)

wait:
	for {
		select {
		case block := <-sub.C:
			require.Equal(t, lastIndex+1, block.Header.Index, "blocks must arrive in order")
			lastIndex = block.Header.Index

			for _, btx := range block.Trans {
				if btx.ID == tx.ID {
					break wait
				}
			}

		case <-timeout:
			t.Fatal("transaction was never sealed")
		}
	}

	require.NoError(t, st.Shutdown())
	w.Shutdown()

	persisted, err := strg.Read()
	require.NoError(t, err)
	require.Len(t, persisted.Chain, len(st.RetrieveChain()))
	require.NoError(t, persisted.Validate())
}

func Test_PersistFailure(t *testing.T) {
	strg := memory.New()

	st, err := state.New(context.Background(), state.Config{
		Storage:            strg,
		Difficulty:         0,
		MaxPersistFailures: 2,
	})
	require.NoError(t, err)

	strg.Fail(errors.New("disk full"))

	w := worker.Run(st, ratelimit.New(100), nil)
	defer w.Shutdown()

	select {
	case err := <-w.Failed():
		require.ErrorIs(t, err, state.ErrPersistFailures)
		require.True(t, database.IsPersistenceError(err))

	case <-time.After(10 * time.Second):
		t.Fatal("worker never reported the persistence failure")
	}
}
