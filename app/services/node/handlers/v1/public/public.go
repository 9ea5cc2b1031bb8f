// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Paging defaults for the chain query.
const (
	defaultPage     = 1
	defaultPageSize = 50
)

// pingInterval is how often an idle websocket is pinged.
const pingInterval = 30 * time.Second

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events[database.Block]
}

// Health reports the node is up.
func (h Handlers) Health(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Health string `json:"health"`
	}{
		Health: "OK",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns a page of the chain along with the total number of blocks.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	page, err := web.QueryInt(r, "page", defaultPage)
	if err != nil || page < 1 {
		return errs.NewTrusted(errs.ErrBadPayload, http.StatusBadRequest)
	}

	pageSize, err := web.QueryInt(r, "page_size", defaultPageSize)
	if err != nil || pageSize < 1 {
		return errs.NewTrusted(errs.ErrBadPayload, http.StatusBadRequest)
	}

	total, blocks := h.State.QueryChain(page, pageSize)

	resp := chainPage{
		Success:  true,
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Chain:    blocks,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var payload newTx
	if err := web.Decode(r, &payload); err != nil {
		h.Log.Infow("new transaction", "traceid", v.TraceID, "ERROR", err)
		return errs.NewTrusted(errs.ErrBadPayload, http.StatusBadRequest)
	}

	if err := validate.Check(payload); err != nil {
		return err
	}

	tx, err := database.NewTx(*payload.Amount, *payload.From, *payload.To)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("%w: %w", errs.ErrBadPayload, err), http.StatusBadRequest)
	}

	h.Log.Infow("new transaction", "traceid", v.TraceID, "tx", tx.ID, "from", tx.From, "to", tx.To, "amount", tx.Amount)

	if err := h.State.SubmitTransaction(tx); err != nil {
		return fmt.Errorf("submit transaction: %w", err)
	}

	resp := status{
		Status:  "OK",
		Message: "transaction successfully added to memory pool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of transactions waiting for the next block.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := h.State.RetrieveMempool()

	resp := mempool{
		Count: len(trans),
		Trans: trans,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket that streams every newly sealed block to the
// client as pretty printed JSON.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Subscribe before the handshake completes so the client sees every
	// block sealed after it connected.
	sub := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Infow("websocket", "traceid", v.TraceID, "ERROR", err)
		return nil
	}
	defer c.Close()

	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	// The client never sends data, but reading is how a close or a dropped
	// connection is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case block, ok := <-sub.C:
			if !ok {
				c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
				return nil
			}

			if missed := sub.Missed(); missed > 0 {
				h.Log.Infow("websocket", "traceid", v.TraceID, "status", "lagged", "missed", missed)
			}

			data, err := json.MarshalIndent(block, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal block: %w", err)
			}

			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return nil
			}

		case <-closed:
			h.Log.Infow("websocket", "traceid", v.TraceID, "status", "client disconnected")
			return nil
		}
	}
}
