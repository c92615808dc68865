package service

import (
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
)

// SessionPolicy maps the remember-me flag onto a refresh lifetime.
type SessionPolicy struct {
	ShortRefreshTTL time.Duration
	LongRefreshTTL  time.Duration
}

// Select returns the refresh policy for remember. Remembered sessions get
// the long TTL and a persistent cookie; others get the short TTL and a
// session cookie the browser drops on close.
func (p SessionPolicy) Select(remember bool) domain.RefreshPolicy {
	if remember {
		return domain.RefreshPolicy{Remember: true, TTL: p.LongRefreshTTL, Persistent: true}
	}
	return domain.RefreshPolicy{Remember: false, TTL: p.ShortRefreshTTL, Persistent: false}
}
