package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "alice@example.com", domain.NormalizeEmail("  Alice@Example.COM \n"))
	require.Equal(t, "", domain.NormalizeEmail("   "))
}

func TestUser_HasAnyRole(t *testing.T) {
	u := domain.User{Roles: []string{domain.RoleUser}}
	admin := domain.User{Roles: []string{domain.RoleUser, domain.RoleAdmin}}

	require.True(t, u.HasAnyRole(domain.RoleUser))
	require.False(t, u.HasAnyRole(domain.RoleAdmin))
	require.True(t, u.HasAnyRole(domain.RoleAdmin, domain.RoleUser))
	require.False(t, u.HasAnyRole())
	require.True(t, admin.HasAnyRole(domain.RoleAdmin))
	require.False(t, domain.User{}.HasAnyRole(domain.RoleUser))
}
