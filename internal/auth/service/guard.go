package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

// AccessDecoder verifies access tokens.
type AccessDecoder interface {
	DecodeAccess(token string) (jwtx.AccessClaims, error)
}

// Guard resolves callers from bearer tokens and checks their roles. Every
// authentication failure wraps ErrUnauthenticated so the transport can
// answer them all the same way; store failures do not.
type Guard struct {
	Codec AccessDecoder
	Users store.Users
}

// Authenticate returns the user behind an access token. Roles come from the
// store, not from the token snapshot.
func (g *Guard) Authenticate(ctx context.Context, bearer string) (domain.User, error) {
	if bearer == "" {
		return domain.User{}, fmt.Errorf("%w: no token", ErrUnauthenticated)
	}

	claims, err := g.Codec.DecodeAccess(bearer)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	u, err := g.Users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrPrincipalNotFound)
		}
		return domain.User{}, fmt.Errorf("lookup principal: %w", err)
	}
	return u, nil
}

// RequireRoles succeeds when u holds at least one of allowed.
func (g *Guard) RequireRoles(u domain.User, allowed ...string) error {
	if !u.HasAnyRole(allowed...) {
		return ErrInsufficientRole
	}
	return nil
}
