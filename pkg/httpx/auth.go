package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Adapters wrap these so the middlewares can tell a rejected caller from a
// failing dependency. Anything else is answered with 500.
var (
	ErrUnauthenticated = errors.New("httpx: unauthenticated")
	ErrForbidden       = errors.New("httpx: forbidden")
)

// Authenticator resolves a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, bearer string) (Principal, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, bearer string) (Principal, error) {
	return f(ctx, bearer)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authorizer decides whether p may proceed given the allowed roles.
type Authorizer interface {
	Authorize(ctx context.Context, p Principal, allowed ...string) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, p Principal, allowed ...string) error

func (f AuthorizerFunc) Authorize(ctx context.Context, p Principal, allowed ...string) error {
	return f(ctx, p, allowed...)
}

// AuthnMiddleware rejects the request with 401 unless the bearer token
// resolves to a principal. Every ErrUnauthenticated gets the same response;
// the cause is only logged.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			p, err := a.Authenticate(ctx, BearerToken(r))
			switch {
			case errors.Is(err, ErrUnauthenticated):
				slogx.FromContext(ctx).Info("authentication failed", "err", err)
				WriteUnauthorized(w)
				return
			case err != nil:
				slogx.FromContext(ctx).Error("authentication error", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
				return
			}

			ctx = slogx.With(ctx, "user_id", p.PrincipalID())
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

// RequireRoles asks az whether the principal may use the route. It must
// run after AuthnMiddleware.
func RequireRoles(az Authorizer, allowed ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := PrincipalFrom(ctx)
			if !ok {
				WriteUnauthorized(w)
				return
			}

			err := az.Authorize(ctx, p, allowed...)
			switch {
			case errors.Is(err, ErrForbidden):
				slogx.FromContext(ctx).Info("role check failed", "allowed", allowed, "err", err)
				WriteError(w, http.StatusForbidden, "insufficient_role", "Not permitted")
				return
			case err != nil:
				slogx.FromContext(ctx).Error("role check error", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteUnauthorized writes the generic 401 with a Bearer challenge.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", "Could not validate credentials")
}
