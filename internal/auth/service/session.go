package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// SessionService handles login and refresh-token rotation. It keeps no
// token state: a rotated refresh token stays valid until it expires.
type SessionService struct {
	Store  store.Store
	Codec  *jwtx.Codec
	Hasher *cryptox.Hasher
	Policy SessionPolicy

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login verifies the password and issues a token pair whose refresh half
// follows the remember-me choice.
func (s *SessionService) Login(ctx context.Context, email, password string, remember bool) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.VerifyDummy(password)
			l.Info("login failed", slog.String("reason", "unknown_email"))
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", u.ID))
		return domain.Session{}, ErrInvalidCredentials
	}

	sess, err := s.issue(u, s.Policy.Select(remember))
	if err != nil {
		return domain.Session{}, err
	}

	l.Info("login succeeded", slog.String("user_id", u.ID), slog.Bool("remember", remember))
	return sess, nil
}

// Refresh validates a refresh token and rotates it. The remember flag is
// read back from the token so the new pair keeps the original policy, and
// the access token picks up the user's current roles.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.DecodeRefresh(refreshToken)
	if err != nil {
		l.Info("refresh rejected", slog.Any("error", err))
		return domain.Session{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh rejected", slog.String("reason", "principal_gone"), slog.String("sub", claims.Subject))
			return domain.Session{}, ErrPrincipalNotFound
		}
		return domain.Session{}, err
	}

	return s.issue(u, s.Policy.Select(claims.Remember))
}

func (s *SessionService) issue(u domain.User, p domain.RefreshPolicy) (domain.Session, error) {
	now := s.now()

	access, err := s.Codec.IssueAccess(u.ID, u.Roles, now)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Codec.IssueRefresh(u.ID, p.TTL, p.Remember, now)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return domain.Session{
		AccessToken:  access,
		AccessTTL:    s.Codec.AccessTTL(),
		RefreshToken: refresh,
		Refresh:      p,
	}, nil
}
