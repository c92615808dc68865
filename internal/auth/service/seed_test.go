package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestSeeder(t *testing.T) {
	t.Parallel()

	t.Run("creates admin once", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		s := &Seeder{Store: f.store, Hasher: f.hasher, AdminEmail: "Admin@Example.com", AdminPassword: "admin-password"}

		require.NoError(t, s.Seed(ctx))
		require.NoError(t, s.Seed(ctx), "idempotent")

		admin, err := f.store.Users().GetUserByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		require.Equal(t, []string{domain.RoleAdmin, domain.RoleUser}, admin.Roles)

		_, err = f.sessions.Login(ctx, "admin@example.com", "admin-password", false)
		require.NoError(t, err)

		roles, err := f.store.Roles().ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, roles, len(DefaultRoles))
	})

	t.Run("skips admin without config", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		require.NoError(t, (&Seeder{Store: f.store, Hasher: f.hasher}).Seed(ctx))
		require.NoError(t, (&Seeder{Store: f.store, Hasher: f.hasher, AdminEmail: "a@example.com"}).Seed(ctx))

		_, err := f.store.Users().GetUserByEmail(ctx, "a@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		u := f.register(t, "judy@example.com", "judy-password")

		s := &Seeder{Store: f.store, Hasher: f.hasher, AdminEmail: "judy@example.com", AdminPassword: "ignored-password"}
		require.NoError(t, s.Seed(ctx))

		got, err := f.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.HasAnyRole(domain.RoleAdmin))

		_, err = f.sessions.Login(ctx, "judy@example.com", "judy-password", false)
		require.NoError(t, err, "existing password is kept")
	})

	t.Run("generates password when allowed", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		s := &Seeder{Store: f.store, Hasher: f.hasher, AdminEmail: "dev@example.com", GeneratePassword: true}
		require.NoError(t, s.Seed(ctx))

		u, err := f.store.Users().GetUserByEmail(ctx, "dev@example.com")
		require.NoError(t, err)
		require.True(t, u.HasAnyRole(domain.RoleAdmin))
		require.NotEmpty(t, u.PasswordHash)
	})
}

// partialRoles reports only the user role as present and records what the
// seeder ensures.
type partialRoles struct {
	store.Roles
	ensured []string
}

func (r *partialRoles) ListAll(context.Context) ([]domain.Role, error) {
	return []domain.Role{{Name: domain.RoleUser}}, nil
}

func (r *partialRoles) EnsureRole(_ context.Context, role domain.Role) (bool, error) {
	r.ensured = append(r.ensured, role.Name)
	return true, nil
}

type rolesOverride struct {
	store.Store
	roles store.Roles
}

func (s rolesOverride) Roles() store.Roles { return s.roles }

func TestSeeder_OnlyEnsuresMissingRoles(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	roles := &partialRoles{}

	s := &Seeder{Store: rolesOverride{Store: f.store, roles: roles}, Hasher: f.hasher}
	require.NoError(t, s.Seed(context.Background()))
	require.Equal(t, []string{domain.RoleAdmin}, roles.ensured)
}
