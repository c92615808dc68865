package jwtx

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Supported signing algorithms.
const (
	AlgHS256 = "HS256"
	AlgRS256 = "RS256"
	AlgES256 = "ES256"
)

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrWrongType        = errors.New("jwtx: wrong token type")

	ErrUnsupportedAlg = errors.New("jwtx: unsupported algorithm")
	ErrInvalidKey     = errors.New("jwtx: invalid signing key")
)

// SupportedAlgorithms lists the values accepted by NewCodec.
func SupportedAlgorithms() []string {
	return []string{AlgHS256, AlgRS256, AlgES256}
}

func errClaim(msg string) error {
	return fmt.Errorf("%w: %s", ErrMalformed, msg)
}

// Codec issues and decodes both token kinds with a single key and
// algorithm. It is immutable after construction and safe for concurrent use.
type Codec struct {
	alg       string
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	accessTTL time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the clock used to check expiry during Decode.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec for alg. For HS256 the secret is the HMAC key;
// for RS256 and ES256 it is a PEM encoded private key whose public half is
// used for verification.
func NewCodec(alg, secret string, accessTTL time.Duration, opts ...Option) (*Codec, error) {
	alg = strings.ToUpper(strings.TrimSpace(alg))
	if !slices.Contains(SupportedAlgorithms(), alg) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
	if accessTTL <= 0 {
		return nil, errors.New("jwtx: access TTL must be positive")
	}

	signKey, verifyKey, err := parseKeys(alg, secret)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		alg:       alg,
		method:    jwt.GetSigningMethod(alg),
		signKey:   signKey,
		verifyKey: verifyKey,
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	return c, nil
}

// Algorithm returns the configured signing algorithm.
func (c *Codec) Algorithm() string { return c.alg }

// AccessTTL returns the fixed lifetime of access tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess signs an access token for subject carrying a snapshot of roles.
func (c *Codec) IssueAccess(subject string, roles []string, now time.Time) (string, error) {
	if subject == "" {
		return "", errors.New("jwtx: empty subject")
	}
	return c.sign(wireClaims{
		RegisteredClaims: registered(subject, now, c.accessTTL),
		Type:             KindAccess,
		Roles:            roles,
	})
}

// IssueRefresh signs a refresh token for subject valid for ttl. The remember
// flag is embedded so a later rotation can reproduce the same policy.
func (c *Codec) IssueRefresh(subject string, ttl time.Duration, remember bool, now time.Time) (string, error) {
	if subject == "" {
		return "", errors.New("jwtx: empty subject")
	}
	if ttl <= 0 {
		return "", errors.New("jwtx: refresh TTL must be positive")
	}
	return c.sign(wireClaims{
		RegisteredClaims: registered(subject, now, ttl),
		Type:             KindRefresh,
		Remember:         &remember,
	})
}

func registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (c *Codec) sign(claims wireClaims) (string, error) {
	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.signKey)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, nil
}

// Decode verifies the signature and algorithm, then expiry, then the claim
// shape. It does not know which kind the caller expects; use DecodeAccess or
// DecodeRefresh at call sites.
func (c *Codec) Decode(tokenStr string) (Token, error) {
	var claims wireClaims
	_, err := c.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.alg {
			return nil, ErrInvalidSignature
		}
		return c.verifyKey, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return claims.toToken()
}

// DecodeAccess decodes tokenStr and requires it to be an access token.
func (c *Codec) DecodeAccess(tokenStr string) (AccessClaims, error) {
	tok, err := c.Decode(tokenStr)
	if err != nil {
		return AccessClaims{}, err
	}
	access, ok := tok.(AccessClaims)
	if !ok {
		return AccessClaims{}, fmt.Errorf("%w: got %s, want %s", ErrWrongType, tok.Kind(), KindAccess)
	}
	return access, nil
}

// DecodeRefresh decodes tokenStr and requires it to be a refresh token.
func (c *Codec) DecodeRefresh(tokenStr string) (RefreshClaims, error) {
	tok, err := c.Decode(tokenStr)
	if err != nil {
		return RefreshClaims{}, err
	}
	refresh, ok := tok.(RefreshClaims)
	if !ok {
		return RefreshClaims{}, fmt.Errorf("%w: got %s, want %s", ErrWrongType, tok.Kind(), KindRefresh)
	}
	return refresh, nil
}

// classify maps parser errors onto the package taxonomy. The parser checks
// the signature before claims, so a forged token never reports ErrExpired.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, ErrInvalidSignature):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
