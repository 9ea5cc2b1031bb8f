// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Route groups.
const (
	apiGroup = "api"
	wsGroup  = "ws"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events[database.Block]
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, apiGroup, "/health", pbl.Health)
	app.Handle(http.MethodGet, apiGroup, "/chain", pbl.Chain)
	app.Handle(http.MethodPost, apiGroup, "/new_transaction", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, apiGroup, "/mempool", pbl.Mempool)
	app.Handle(http.MethodGet, wsGroup, "/chain", pbl.Events)
}
