package domain

import "time"

// RefreshPolicy is the remember-me decision for one refresh token.
// Persistent refresh cookies carry Max-Age=TTL; others are session cookies.
type RefreshPolicy struct {
	Remember   bool
	TTL        time.Duration
	Persistent bool
}

// Session is the outcome of a login or refresh: a fresh token pair and the
// policy the refresh cookie must be set with.
type Session struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	Refresh      RefreshPolicy
}
