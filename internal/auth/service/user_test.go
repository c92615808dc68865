package service

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, "  Heidi@Example.com ", "long-enough")
	require.NoError(t, err)
	require.Equal(t, "heidi@example.com", u.Email)
	require.Equal(t, []string{domain.RoleUser}, u.Roles)
	require.NotEmpty(t, u.ID)
	require.True(t, f.hasher.Verify("long-enough", u.PasswordHash))

	stored, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, stored.Email)
	require.Equal(t, []string{domain.RoleUser}, stored.Roles)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := f.users.Register(ctx, "HEIDI@example.com", "another-password")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("invalid input", func(t *testing.T) {
		for name, tc := range map[string][2]string{
			"empty email":    {"", "long-enough"},
			"not an email":   {"heidi", "long-enough"},
			"display name":   {"Heidi <h@example.com>", "long-enough"},
			"short password": {"ivan@example.com", "short"},
			"huge password":  {"ivan@example.com", strings.Repeat("x", MaxPasswordLength+1)},
		} {
			_, err := f.users.Register(ctx, tc[0], tc[1])
			require.ErrorIs(t, err, ErrInvalidRegistration, name)
		}
	})
}
