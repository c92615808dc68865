package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. These provide sensible defaults but are
// normally overridden by configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultShortRefreshTTL is the refresh lifetime when the user did not
	// ask to be remembered.
	DefaultShortRefreshTTL = 12 * time.Hour

	// DefaultLongRefreshTTL is the refresh lifetime for "remember me" logins.
	DefaultLongRefreshTTL = 30 * 24 * time.Hour
)

// Kind is the wire "type" tag that separates access tokens from refresh
// tokens. Both kinds share one encoding.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Token is a decoded, verified token. It is implemented only by
// AccessClaims and RefreshClaims; switch on the concrete type to reach
// kind-specific fields.
type Token interface {
	Kind() Kind
	SubjectID() string
	sealed()
}

// AccessClaims are the claims of a verified access token. Roles is a
// snapshot taken at issuance, not a live view.
type AccessClaims struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

func (AccessClaims) Kind() Kind          { return KindAccess }
func (c AccessClaims) SubjectID() string { return c.Subject }
func (AccessClaims) sealed()             {}

// RefreshClaims are the claims of a verified refresh token. Remember carries
// the login's remember-me choice across rotations.
type RefreshClaims struct {
	Subject   string
	Remember  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

func (RefreshClaims) Kind() Kind          { return KindRefresh }
func (c RefreshClaims) SubjectID() string { return c.Subject }
func (RefreshClaims) sealed()             {}

// TTL is the lifetime the token was issued with.
func (c AccessClaims) TTL() time.Duration { return c.ExpiresAt.Sub(c.IssuedAt) }

// TTL is the lifetime the token was issued with.
func (c RefreshClaims) TTL() time.Duration { return c.ExpiresAt.Sub(c.IssuedAt) }

// wireClaims is the JWT payload shared by both kinds. Kind-specific fields
// are pointers or nil-able so their presence can be checked against the tag.
type wireClaims struct {
	jwt.RegisteredClaims

	// "access" or "refresh"
	Type Kind `json:"type"`

	// Access only.
	Roles []string `json:"roles,omitempty"`

	// Refresh only.
	Remember *bool `json:"remember,omitempty"`
}

// toToken validates the tag first, then the fields that tag allows.
func (w *wireClaims) toToken() (Token, error) {
	if w.Subject == "" {
		return nil, errClaim("missing sub")
	}
	if w.IssuedAt == nil || w.ExpiresAt == nil {
		return nil, errClaim("missing iat or exp")
	}
	if !w.ExpiresAt.After(w.IssuedAt.Time) {
		return nil, errClaim("exp not after iat")
	}

	switch w.Type {
	case KindAccess:
		if w.Remember != nil {
			return nil, errClaim("remember on access token")
		}
		return AccessClaims{
			Subject:   w.Subject,
			Roles:     w.Roles,
			IssuedAt:  w.IssuedAt.Time,
			ExpiresAt: w.ExpiresAt.Time,
			ID:        w.ID,
		}, nil

	case KindRefresh:
		if w.Roles != nil {
			return nil, errClaim("roles on refresh token")
		}
		return RefreshClaims{
			Subject:   w.Subject,
			Remember:  w.Remember != nil && *w.Remember,
			IssuedAt:  w.IssuedAt.Time,
			ExpiresAt: w.ExpiresAt.Time,
			ID:        w.ID,
		}, nil

	default:
		return nil, errClaim("unknown type tag")
	}
}
