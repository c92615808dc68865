//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestAdminRoute(t *testing.T) {
	client := setupAuthContainer(t, nil)
	ctx := t.Context()

	_, err := client.AdminSecret(ctx, "")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	admin, err := client.Login(ctx, adminEmail, adminPassword, false)
	require.NoError(t, err)

	secret, err := client.AdminSecret(ctx, admin.AccessToken)
	require.NoError(t, err)
	require.True(t, secret.OK)
	require.Equal(t, "admin only content", secret.Msg)

	user, err := client.Register(ctx, authsdk.RegisterRequest{Email: "user@example.com", Password: "user-password"})
	require.NoError(t, err)
	require.Equal(t, []string{"user"}, user.Roles)

	tok, err := client.Login(ctx, "user@example.com", "user-password", false)
	require.NoError(t, err)

	_, err = client.AdminSecret(ctx, tok.AccessToken)
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeInsufficientRole)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	client := setupAuthContainer(t, nil)

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{Email: adminEmail, Password: "another-password"})
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeEmailTaken)

	_, err = client.Register(t.Context(), authsdk.RegisterRequest{Email: "short@example.com", Password: "short"})
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRegistration)
}
