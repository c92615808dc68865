package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by drivers. It
// exposes sub-repositories; a Tx exposes the same repositories bound to the
// transaction, which keeps nested transactions out of reach.
type Store interface {
	Users() Users
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn only use the repos of tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the principal store. Emails passed in must already be
// normalised with domain.NormalizeEmail.
type Users interface {
	// GetUserByID returns a user and its roles.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used at login and registration.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and links u.Roles. Returns ErrAlreadyExists when
	// the email is taken. Run it inside WithTx so the links are atomic.
	CreateUser(ctx context.Context, u domain.User) error

	// AddRole links an existing role to a user; a no-op when already linked.
	AddRole(ctx context.Context, userID, role string) error
}

type Roles interface {
	// EnsureRole inserts r unless a role with that name exists and reports
	// whether it was created.
	EnsureRole(ctx context.Context, r domain.Role) (bool, error)

	// ListAll returns all roles ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)
}
