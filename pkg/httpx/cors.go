package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// CORSConfig lists the origins allowed to call the API from a browser.
// A single "*" allows any origin but disables credentials, since browsers
// refuse credentialed responses with a wildcard origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func (c CORSConfig) wildcard() bool {
	return len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*"
}

// AllowCredentials reports whether responses may carry
// Access-Control-Allow-Credentials.
func (c CORSConfig) AllowCredentials() bool {
	return len(c.AllowedOrigins) > 0 && !c.wildcard()
}

func (c CORSConfig) allowed(origin string) bool {
	return c.wildcard() || slices.Contains(c.AllowedOrigins, origin)
}

func joinOrDefault(v []string, def string) string {
	if len(v) == 0 {
		return def
	}
	return strings.Join(v, ", ")
}

// CORS answers preflight requests and decorates responses for allowed
// origins. Requests from other origins pass through without CORS headers
// and the browser blocks them.
func CORS(cfg CORSConfig) Middleware {
	methods := joinOrDefault(cfg.AllowedMethods, "GET, POST, OPTIONS")
	headers := joinOrDefault(cfg.AllowedHeaders, "Authorization, Content-Type, X-Requested-With, X-Request-ID")
	credentials := cfg.AllowCredentials()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !cfg.allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if credentials {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a handler panic into a 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logPanic(r, err)
				WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
