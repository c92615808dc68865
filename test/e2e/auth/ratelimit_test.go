//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin runs with the production login limit of five attempts
// per minute for one address and username.
func TestRateLimitLogin(t *testing.T) {
	client := setupAuthContainer(t, map[string]string{"LOGIN_RATE_LIMIT": "5"})
	ctx := t.Context()

	for i := range 5 {
		_, err := client.Login(ctx, adminEmail, "wrong-password", false)
		requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
		t.Logf("attempt %d rejected with 401", i+1)
	}

	_, err := client.Login(ctx, adminEmail, adminPassword, false)
	requireAPIError(t, err, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimitExceeded)

	_, err = client.Login(ctx, "other@example.com", "whatever-password", false)
	require.Error(t, err)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
}
