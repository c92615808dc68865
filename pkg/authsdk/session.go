package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// expiryBuffer makes the session refresh slightly before the access token
// actually expires.
const expiryBuffer = 30 * time.Second

// Session holds an access token and refreshes it through the client's
// refresh cookie when it runs out. Safe for concurrent use.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: client}
	s.update(tok)
	return s
}

func (s *Session) update(tok *TokenResponse) {
	s.accessToken = tok.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - expiryBuffer)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// getValidToken returns a valid access token, refreshing it if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (string, error) {
	tok, err := s.client.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("authsdk: refresh: %w", err)
	}
	s.update(tok)
	return s.accessToken, nil
}

// Refresh forces a rotation regardless of the current token's expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.refreshLocked(ctx)
	return err
}

// Me returns the session's principal.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	return withRetry(ctx, s, s.client.Me)
}

// AdminSecret calls the admin-only endpoint as the session's principal.
func (s *Session) AdminSecret(ctx context.Context) (*AdminSecretResponse, error) {
	return withRetry(ctx, s, s.client.AdminSecret)
}

// Logout clears the refresh cookie. The session cannot refresh afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expiresAt = time.Time{}
	return s.client.Logout(ctx)
}

// withRetry calls fn with a valid token and retries once after a forced
// refresh if the service rejects the token anyway.
func withRetry[T any](ctx context.Context, s *Session, fn func(context.Context, string) (*T, error)) (*T, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	out, err := fn(ctx, token)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return out, err
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return fn(ctx, s.AccessToken())
}
