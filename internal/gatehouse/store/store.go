package store

import (
	"context"
	"errors"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite
// today) implement this. Sub-repositories keep concerns tidy and let
// transactional code reuse the same interfaces.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn
	// returns nil and rolling back otherwise. Use this for multi-step
	// operations that must be atomic (e.g. password change plus token
	// salt rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store scope.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByID returns the public projection of a user.
	GetByID(ctx context.Context, id int64) (domain.User, error)

	// GetForAuthByUsername returns the minimal auth projection used by
	// the per-request resolver. The rotation salt read here must
	// reflect the latest committed write (read-your-writes), since it
	// is the revocation mechanism.
	GetForAuthByUsername(ctx context.Context, username string) (domain.UserForAuth, error)

	// GetForLoginByUsername returns the credential projection for the
	// login flow.
	GetForLoginByUsername(ctx context.Context, username string) (domain.UserForLogin, error)

	// Create inserts a new user row and returns its id.
	Create(ctx context.Context, u domain.UserForInsert) (int64, error)

	// UpdatePasswordHash replaces the stored digest and the salt it
	// was computed with. Used both for explicit password changes and
	// for silent scheme upgrades on login; it deliberately does NOT
	// touch the token salt.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash, pwdSalt string) error

	// RotateTokenSalt replaces the rotation salt, instantly
	// invalidating every outstanding token for the user.
	RotateTokenSalt(ctx context.Context, userID int64, newSalt string) error

	// VerifyEmail consumes a pending verification token, marking the
	// user verified. ErrNotFound when the token is unknown or expired.
	VerifyEmail(ctx context.Context, token string) error
}
