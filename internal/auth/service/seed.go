package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/idx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// DefaultRoles are ensured on every seed run.
var DefaultRoles = []domain.Role{
	{Name: domain.RoleAdmin, Description: "Administrator"},
	{Name: domain.RoleUser, Description: "Default user"},
}

// Seeder creates the default roles and, when configured, an admin account.
// Every step is idempotent so it can run on each start.
type Seeder struct {
	Store         store.Store
	Hasher        *cryptox.Hasher
	AdminEmail    string
	AdminPassword string

	// GeneratePassword lets a dev deployment seed the admin from just an
	// email; the generated password is logged once.
	GeneratePassword bool
}

func (s *Seeder) Seed(ctx context.Context) error {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	existing, err := s.Store.Roles().ListAll(ctx)
	if err != nil {
		return fmt.Errorf("seed roles: list: %w", err)
	}
	for _, r := range DefaultRoles {
		if slices.ContainsFunc(existing, func(e domain.Role) bool { return e.Name == r.Name }) {
			continue
		}
		r.CreatedAt = now
		created, err := s.Store.Roles().EnsureRole(ctx, r)
		if err != nil {
			return fmt.Errorf("seed role %q: %w", r.Name, err)
		}
		if created {
			l.Info("seeded role", slog.String("role", r.Name))
		}
	}

	email := domain.NormalizeEmail(s.AdminEmail)
	if email == "" {
		l.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	admin, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.Store.Users().AddRole(ctx, admin.ID, domain.RoleAdmin); err != nil {
			return fmt.Errorf("seed admin: grant role: %w", err)
		}
		l.Info("admin already present, ensured role", slog.String("user_id", admin.ID))
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("seed admin: lookup: %w", err)
	}

	password := s.AdminPassword
	if password == "" && s.GeneratePassword {
		if password, err = cryptox.GeneratePassword(); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		l.Warn("generated admin password, change it after first login",
			slog.String("email", email),
			slog.String("password", password),
		)
	}
	if password == "" {
		l.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{domain.RoleAdmin, domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		return fmt.Errorf("seed admin: create: %w", err)
	}

	l.Info("seeded admin", slog.String("user_id", u.ID))
	return nil
}
