package store

import (
	"context"
	"errors"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable, and the
// explicit Tx type stops callers from accidentally nesting transactions.
type Store interface {
	Users() Users
	Codes() Codes
	Sessions() Sessions
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. This is the recommended way to run multi-step operations
	// that must be atomic (code replacement, check-and-consume).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
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

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the credential-verification lookup (exact match).
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// SetApproved flips the approval flag and bumps updated_at.
	SetApproved(ctx context.Context, userID string, approved bool) error

	// UpdateLastLogin stamps last_login after a completed authentication.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Codes interface {
	// CreateCode inserts a fresh one-time code row.
	CreateCode(ctx context.Context, c domain.OneTimeCode) error

	// DeleteCodesForUser removes every code row for a user. Paired with
	// CreateCode inside one transaction it implements copy-on-issue
	// replacement, preserving the at-most-one-live-code invariant.
	DeleteCodesForUser(ctx context.Context, userID string) error

	// GetLiveCodeForUser returns the unused, unexpired code for a user at
	// the given instant, or ErrNotFound.
	GetLiveCodeForUser(ctx context.Context, userID string, now time.Time) (domain.OneTimeCode, error)

	// ConsumeCode marks a code used. It only succeeds if the row is still
	// unused, so two concurrent submissions cannot both win; the loser gets
	// ErrNotFound.
	ConsumeCode(ctx context.Context, id string) error

	// DeleteDeadCodes removes rows that are used or expired at the given
	// instant (housekeeping). Live codes are never touched.
	DeleteDeadCodes(ctx context.Context, now time.Time) error
}

type Sessions interface {
	// CreateSession inserts a new session row.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session for a token fingerprint.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// PromoteSession transitions a pending_mfa session to authenticated,
	// stamping the login time. Only succeeds if the row is still pending.
	PromoteSession(ctx context.Context, id string, loginTime time.Time) error

	// DeleteSession removes a session row entirely (logout).
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes rows past their absolute timeout.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type AuditEvents interface {
	// AppendAuditEvent writes one append-only audit record.
	AppendAuditEvent(ctx context.Context, e domain.AuditEvent) error
}
