package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrLiveTokenExists is surfaced when the storage-layer uniqueness
	// backstop rejects a second live token for an account. The service
	// normally catches conflicts before insert; this is the last line.
	ErrLiveTokenExists = errors.New("store: live token already exists for account")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Accounts() Accounts
	SessionTokens() SessionTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic, above all the
	// conflict-check-then-issue sequence at login. The caller MUST call
	// Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
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

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when username or email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used during login.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetAccountByEmail is used for registration uniqueness feedback.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// SetAccountActive toggles is_active and bumps updated_at.
	SetAccountActive(ctx context.Context, accountID string, active bool) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error

	// DeleteAccount cascades to session_tokens (per schema).
	DeleteAccount(ctx context.Context, accountID string) error
}

// SessionTokens is deliberately narrow: the exclusivity invariant is
// composed by the authority service from these calls inside one
// transaction, so this is the only place atomicity matters.
type SessionTokens interface {
	// CreateSessionToken stores a new token record. The schema backstop
	// (unique live token per account) maps violations to ErrLiveTokenExists.
	CreateSessionToken(ctx context.Context, t domain.SessionToken) error

	// GetSessionTokenByHash returns the record for a signed token's fingerprint.
	GetSessionTokenByHash(ctx context.Context, tokenHash string) (domain.SessionToken, error)

	// FindLiveTokenByAccount returns the account's live token, if any.
	FindLiveTokenByAccount(ctx context.Context, accountID string, now time.Time) (domain.SessionToken, error)

	// FindLiveTokenByHash returns any account's live token bound to the
	// given processed device hash. Used for the registration conflict check.
	FindLiveTokenByHash(ctx context.Context, processedHash string, now time.Time) (domain.SessionToken, error)

	// SweepExpiredTokens flips is_valid off for the account's tokens whose
	// expiry has passed, so the live-token uniqueness backstop never trips
	// on naturally dead rows.
	SweepExpiredTokens(ctx context.Context, accountID string, now time.Time) error

	// SweepAllExpiredTokens is the housekeeping-wide version of
	// SweepExpiredTokens. Returns the number of rows flipped.
	SweepAllExpiredTokens(ctx context.Context, now time.Time) (int64, error)

	// InvalidateToken flips a single token invalid.
	InvalidateToken(ctx context.Context, tokenID string, now time.Time) error

	// InvalidateAccountTokens bulk-invalidates every token for an account
	// (force logout, deactivation, password change).
	InvalidateAccountTokens(ctx context.Context, accountID string, now time.Time) (int64, error)

	// InvalidateAccountTokensExcept invalidates all of an account's tokens
	// except those bound to keepProcessedHash (logout-other-devices).
	InvalidateAccountTokensExcept(ctx context.Context, accountID, keepProcessedHash string, now time.Time) (int64, error)

	// TouchLastUsed refreshes last_used_at on a verified token. Lock-free;
	// lastUsedAt staleness by a few requests is acceptable.
	TouchLastUsed(ctx context.Context, tokenID string, now time.Time) error

	// ListLiveTokensByAccount returns the account's live tokens for display.
	ListLiveTokensByAccount(ctx context.Context, accountID string, now time.Time) ([]domain.SessionToken, error)

	// DeleteStaleTokens removes tokens that have been invalid or expired
	// since before cutoff. Routine housekeeping, not safety-critical.
	DeleteStaleTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
