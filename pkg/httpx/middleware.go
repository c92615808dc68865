package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws to h so that the first middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func logPanic(r *http.Request, v any) {
	slogx.FromContext(r.Context()).Error("panic recovered in HTTP handler",
		"panic", v,
		"method", r.Method,
		"path", r.URL.Path,
	)
}
