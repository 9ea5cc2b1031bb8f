package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/metrics"
	"github.com/ardanlabs/ledger/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {
	rec := metrics.NewWeb()

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and error counters.
			v, verr := web.GetValues(ctx)
			if verr == nil {
				rec.ObserveRequest(r.Method, err, v.Now)
			}
			if err != nil {
				rec.IncError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
