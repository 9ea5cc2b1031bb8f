package state_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, strg database.Storage, evts *events.Events[database.Block], maxFailures int) *state.State {
	t.Helper()

	st, err := state.New(context.Background(), state.Config{
		Storage:            strg,
		Difficulty:         1,
		MaxPersistFailures: maxFailures,
		Events:             evts,
		EvHandler:          func(v string, args ...any) { t.Logf(v, args...) },
	})
	ifErrFailNow(t, err)

	return st
}

// =============================================================================

func Test_MineTwoTransactions(t *testing.T) {
	strg := memory.New()
	evts := events.New[database.Block](10)
	sub := evts.Acquire("test")

	st := newState(t, strg, evts, 0)

	t.Log("Given the need to seal submitted transactions into a block.")
	{
		tx1, err := database.NewTx(10, "a", "b")
		ifErrFailNow(t, err)
		tx2, err := database.NewTx(5, "b", "c")
		ifErrFailNow(t, err)

		ifErrFailNow(t, st.SubmitTransaction(tx1))
		ifErrFailNow(t, st.SubmitTransaction(tx2))

		if n := st.QueryMempoolLength(); n != 2 {
			t.Fatalf("\t%s\tShould have 2 transactions in the pool, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould have 2 transactions in the pool.", success)

		block, err := st.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		total, chain := st.QueryChain(1, 50)
		if total != 2 || len(chain) != 2 {
			t.Fatalf("\t%s\tShould have 2 blocks, got %d.", failed, total)
		}
		t.Logf("\t%s\tShould have 2 blocks.", success)

		if chain[1].Header.PrevBlockHash != chain[0].Header.Hash {
			t.Fatalf("\t%s\tShould link the block to genesis.", failed)
		}
		t.Logf("\t%s\tShould link the block to genesis.", success)

		if len(block.Trans) != 2 || block.Trans[0].ID != tx1.ID || block.Trans[1].ID != tx2.ID {
			t.Fatalf("\t%s\tShould seal both transactions in order.", failed)
		}
		t.Logf("\t%s\tShould seal both transactions in order.", success)

		if n := st.QueryMempoolLength(); n != 0 {
			t.Fatalf("\t%s\tShould have an empty pool, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould have an empty pool.", success)

		if strg.Writes() != 2 {
			t.Fatalf("\t%s\tShould have written 2 snapshots, got %d.", failed, strg.Writes())
		}
		t.Logf("\t%s\tShould have written 2 snapshots.", success)

		got := <-sub.C
		if got.Header.Hash != block.Header.Hash {
			t.Fatalf("\t%s\tShould publish the block to subscribers.", failed)
		}
		t.Logf("\t%s\tShould publish the block to subscribers.", success)

		persisted, err := strg.Read()
		ifErrFailNow(t, err)
		if len(persisted.Chain) != 2 || len(persisted.Pool) != 0 {
			t.Fatalf("\t%s\tShould persist the new chain.", failed)
		}
		t.Logf("\t%s\tShould persist the new chain.", success)
	}
}

func Test_CancelRestoresPool(t *testing.T) {
	st := newState(t, memory.New(), nil, 0)

	tx1, _ := database.NewTx(1, "a", "b")
	tx2, _ := database.NewTx(2, "a", "b")
	ifErrFailNow(t, st.SubmitTransaction(tx1))
	ifErrFailNow(t, st.SubmitTransaction(tx2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := st.MineNewBlock(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("%s\tShould stop mining when cancelled, got %v.", failed, err)
	}
	t.Logf("%s\tShould stop mining when cancelled.", success)

	pool := st.RetrieveMempool()
	if len(pool) != 2 || pool[0].ID != tx1.ID || pool[1].ID != tx2.ID {
		t.Fatalf("%s\tShould put the transactions back in the pool in order.", failed)
	}
	t.Logf("%s\tShould put the transactions back in the pool in order.", success)

	if total, _ := st.QueryChain(1, 1); total != 1 {
		t.Fatalf("%s\tShould not add a block, got %d.", failed, total)
	}
	t.Logf("%s\tShould not add a block.", success)
}

func Test_PersistRetry(t *testing.T) {
	strg := memory.New()
	st := newState(t, strg, nil, 3)
	ctx := context.Background()

	t.Log("Given the need to survive snapshot write failures.")
	{
		strg.Fail(errors.New("disk full"))

		for i := 1; i <= 2; i++ {
			if _, err := st.MineNewBlock(ctx); err != nil {
				t.Fatalf("\t%s\tShould keep mining after failure %d: %s", failed, i, err)
			}
		}
		t.Logf("\t%s\tShould keep mining while under the failure limit.", success)

		if _, err := st.MineNewBlock(ctx); !errors.Is(err, state.ErrPersistFailures) {
			t.Fatalf("\t%s\tShould report the failure limit, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould report the failure limit.", success)

		if n := len(st.RetrieveChain()); n != 4 {
			t.Fatalf("\t%s\tShould keep every block in memory, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould keep every block in memory.", success)

		strg.Fail(nil)
		if _, err := st.MineNewBlock(ctx); err != nil {
			t.Fatalf("\t%s\tShould recover once storage works: %s", failed, err)
		}

		persisted, err := strg.Read()
		ifErrFailNow(t, err)
		if len(persisted.Chain) != 5 {
			t.Fatalf("\t%s\tShould persist every block on recovery, got %d.", failed, len(persisted.Chain))
		}
		t.Logf("\t%s\tShould persist every block on recovery.", success)
	}
}

func Test_ConcurrentSubmit(t *testing.T) {
	st := newState(t, memory.New(), nil, 0)
	ctx := context.Background()

	const submitters = 4
	const perSubmitter = 25

	var wg sync.WaitGroup
	wg.Add(submitters)

	ids := make(chan string, submitters*perSubmitter)
	for i := range submitters {
		go func() {
			defer wg.Done()
			for j := range perSubmitter {
				tx, err := database.NewTx(float64(i*perSubmitter+j), "a", "b")
				if err != nil {
					t.Error(err)
					return
				}
				if err := st.SubmitTransaction(tx); err != nil {
					t.Error(err)
					return
				}
				ids <- tx.ID
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// Mine and read while submissions are still arriving.
	for mining := true; mining; {
		select {
		case <-done:
			mining = false
		default:
		}

		if _, err := st.MineNewBlock(ctx); err != nil {
			t.Fatalf("%s\tShould be able to mine: %s", failed, err)
		}
		st.QueryChain(1, 10)
		st.RetrieveLatestBlock()
	}

	// One more cycle seals anything submitted during the last one.
	if _, err := st.MineNewBlock(ctx); err != nil {
		t.Fatalf("%s\tShould be able to mine: %s", failed, err)
	}
	close(ids)

	seen := make(map[string]int)
	for _, block := range st.RetrieveChain() {
		for _, tx := range block.Trans {
			seen[tx.ID]++
		}
	}

	for id := range ids {
		if seen[id] != 1 {
			t.Fatalf("%s\tShould seal every transaction exactly once, %s sealed %d times.", failed, id, seen[id])
		}
	}
	t.Logf("%s\tShould seal every transaction exactly once.", success)

	if n := st.QueryMempoolLength(); n != 0 {
		t.Fatalf("%s\tShould drain the pool, got %d.", failed, n)
	}
	t.Logf("%s\tShould drain the pool.", success)
}

func Test_SubmitWhileMining(t *testing.T) {
	var (
		armed   atomic.Bool
		mining  = make(chan struct{})
		release = make(chan struct{})
	)

	// Hold the search open once it starts so reads and submits are
	// guaranteed to overlap it.
	ev := func(v string, args ...any) {
		if armed.Load() && strings.HasPrefix(v, "database: PerformPOW: MINING: started") {
			armed.Store(false)
			close(mining)
			<-release
		}
	}

	st, err := state.New(context.Background(), state.Config{
		Storage:    memory.New(),
		Difficulty: 4,
		EvHandler:  ev,
	})
	ifErrFailNow(t, err)

	t.Log("Given the need to use the ledger while a block is being mined.")
	{
		armed.Store(true)

		type result struct {
			block database.Block
			err   error
		}
		inFlight := make(chan result, 1)
		go func() {
			block, err := st.MineNewBlock(context.Background())
			inFlight <- result{block, err}
		}()

		select {
		case <-mining:
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould start mining.", failed)
		}

		var wg sync.WaitGroup
		ids := make([]string, 2)
		for i := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tx, err := database.NewTx(float64(i+1), "a", "b")
				if err != nil {
					t.Error(err)
					return
				}
				if err := st.SubmitTransaction(tx); err != nil {
					t.Error(err)
					return
				}
				ids[i] = tx.ID
			}()
		}

		reads := make(chan struct{})
		go func() {
			defer close(reads)
			for range 100 {
				st.QueryChain(1, 10)
				st.QueryChainHeight()
			}
			wg.Wait()
		}()

		select {
		case <-reads:
		case <-time.After(5 * time.Second):
			close(release)
			t.Fatalf("\t%s\tShould read and submit without waiting for the search.", failed)
		}
		t.Logf("\t%s\tShould read and submit without waiting for the search.", success)

		if n := st.QueryMempoolLength(); n != 2 {
			t.Fatalf("\t%s\tShould hold both transactions in the pool, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould hold both transactions in the pool.", success)

		close(release)

		res := <-inFlight
		ifErrFailNow(t, res.err)
		if len(res.block.Trans) != 0 {
			t.Fatalf("\t%s\tShould seal an empty in-flight block, got %d.", failed, len(res.block.Trans))
		}
		t.Logf("\t%s\tShould seal an empty in-flight block.", success)

		next, err := st.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		got := make(map[string]bool)
		for _, tx := range next.Trans {
			got[tx.ID] = true
		}
		if len(next.Trans) != 2 || !got[ids[0]] || !got[ids[1]] {
			t.Fatalf("\t%s\tShould seal both transactions in the next block.", failed)
		}
		t.Logf("\t%s\tShould seal both transactions in the next block.", success)

		if n := st.QueryMempoolLength(); n != 0 {
			t.Fatalf("\t%s\tShould drain the pool, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould drain the pool.", success)

		if h := st.QueryChainHeight(); h != 3 {
			t.Fatalf("\t%s\tShould have 3 blocks, got %d.", failed, h)
		}
		t.Logf("\t%s\tShould have 3 blocks.", success)
	}
}

func Test_Restart(t *testing.T) {
	strg := memory.New()
	ctx := context.Background()

	st := newState(t, strg, nil, 0)
	if _, err := st.MineNewBlock(ctx); err != nil {
		t.Fatalf("%s\tShould be able to mine: %s", failed, err)
	}

	tx, _ := database.NewTx(9, "a", "b")
	ifErrFailNow(t, st.SubmitTransaction(tx))
	ifErrFailNow(t, st.Shutdown())

	restarted, err := state.New(ctx, state.Config{Storage: strg, Difficulty: 2})
	ifErrFailNow(t, err)

	if n := len(restarted.RetrieveChain()); n != 2 {
		t.Fatalf("%s\tShould restore the chain, got %d blocks.", failed, n)
	}
	t.Logf("%s\tShould restore the chain.", success)

	pool := restarted.RetrieveMempool()
	if len(pool) != 1 || pool[0].ID != tx.ID {
		t.Fatalf("%s\tShould restore the pool.", failed)
	}
	t.Logf("%s\tShould restore the pool.", success)

	if d := restarted.RetrieveDifficulty(); d != 2 {
		t.Fatalf("%s\tShould use the configured difficulty, got %d.", failed, d)
	}
	t.Logf("%s\tShould use the configured difficulty.", success)
}
