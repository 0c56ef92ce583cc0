package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/aussiebroadwan/tether/pkg/cryptox"
	"github.com/aussiebroadwan/tether/pkg/idx"
	"github.com/aussiebroadwan/tether/pkg/jwtx"
	"github.com/aussiebroadwan/tether/pkg/slogx"
)

// DefaultFreshnessWindow bounds how far a device hash timestamp may drift
// from server time before the hash is rejected as stale.
const DefaultFreshnessWindow = 5 * time.Minute

// AuthorityService is the server-side device authority: it validates device
// hashes, detects device-to-account conflicts, enforces session exclusivity
// and issues/revokes session tokens. Safe for arbitrary concurrent use; the
// conflict-check-then-issue sequence runs inside one store transaction and
// correctness rests on the store's transactional guarantees, not on any
// in-process lock.
type AuthorityService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store
	Issuer   string

	// DeviceSalt is the server-held salt folded into every incoming device
	// hash before it is compared or stored.
	DeviceSalt string

	SessionTTL time.Duration

	// FreshnessWindow for device hash timestamps. Zero disables the check.
	FreshnessWindow time.Duration
}

// Register creates a new account and issues its first session token, bound
// to the presenting device. The device-uniqueness check and the account +
// token inserts are one atomic unit.
func (s *AuthorityService) Register(
	ctx context.Context,
	username, email, password string,
	deviceHash string,
	hashTimestamp int64,
) (*domain.SessionGrant, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || password == "" || !strings.Contains(email, "@") {
		return nil, ErrValidation
	}

	processed, err := s.processIncomingHash(deviceHash, hashTimestamp, now)
	if err != nil {
		return nil, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	var grant *domain.SessionGrant

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// A device that backs any live session lineage is taken, no matter
		// whose. Strict 1:1 device to account.
		if _, err := tx.SessionTokens().FindLiveTokenByHash(ctx, processed, now); err == nil {
			return ErrDeviceAlreadyRegistered
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAccountExists
			}
			return err
		}

		grant, err = s.issueSession(ctx, tx, account, processed, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.Info("account registered", "account_id", account.ID, "username", username)
	return grant, nil
}

// Login authenticates the account and issues a session token if, and only
// if, no other device currently holds the account's live session. The
// conflict check and the token insert execute as a single transaction so
// two racing logins can never both be granted.
func (s *AuthorityService) Login(
	ctx context.Context,
	username, password string,
	deviceHash string,
	hashTimestamp int64,
) (*domain.SessionGrant, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrValidation
	}

	processed, err := s.processIncomingHash(deviceHash, hashTimestamp, now)
	if err != nil {
		return nil, err
	}

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		l.Info("login password verification failed", "account_id", account.ID)
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	var grant *domain.SessionGrant

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Naturally expired rows must not count as live nor block the
		// uniqueness backstop.
		if err := tx.SessionTokens().SweepExpiredTokens(ctx, account.ID, now); err != nil {
			return err
		}

		live, err := tx.SessionTokens().FindLiveTokenByAccount(ctx, account.ID, now)
		switch {
		case err == nil:
			if live.ProcessedHash != processed {
				// Exclusivity is enforced by rejecting the newcomer, not by
				// silently evicting the holder.
				return ErrAccountActiveOnOtherDevice
			}
			// Same device logging in again: rotate its token.
			if err := tx.SessionTokens().InvalidateToken(ctx, live.ID, now); err != nil {
				return err
			}
		case errors.Is(err, store.ErrNotFound):
			// No live session; proceed.
		default:
			return err
		}

		grant, err = s.issueSession(ctx, tx, account, processed, now)
		return err
	})
	if err != nil {
		// The schema backstop fires only when a concurrent login won the
		// race between our read and our insert.
		if errors.Is(err, store.ErrLiveTokenExists) {
			return nil, ErrAccountActiveOnOtherDevice
		}
		return nil, err
	}

	l.Info("login granted", "account_id", account.ID)
	return grant, nil
}

// issueSession signs a token and records it. Must be called inside the
// caller's transaction so the insert is atomic with the conflict check.
func (s *AuthorityService) issueSession(
	ctx context.Context,
	tx store.Tx,
	account domain.Account,
	processedHash string,
	now time.Time,
) (*domain.SessionGrant, error) {
	sid := idx.New().String()
	expiresAt := now.Add(s.SessionTTL)

	claims := jwtx.NewSessionClaims(
		account.ID,
		sid,
		processedHash,
		s.SessionTTL,
		s.Issuer,
		account.Username,
		now,
	)

	signed, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	record := domain.SessionToken{
		ID:            sid,
		AccountID:     account.ID,
		ProcessedHash: processedHash,
		TokenHash:     cryptox.FingerprintToken(signed),
		ExpiresAt:     expiresAt,
		IsValid:       true,
	}

	if err := tx.SessionTokens().CreateSessionToken(ctx, record); err != nil {
		return nil, err
	}

	return &domain.SessionGrant{
		Account:   account.Public(),
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks a presented session token end to end: signature and expiry
// on the JWT, then the store record's validity, then the owning account's
// standing. On success it refreshes last_used_at (best effort, lock-free)
// and returns the claims with the backing record.
func (s *AuthorityService) Verify(ctx context.Context, rawToken string) (jwtx.Claims, domain.SessionToken, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(rawToken)
	if err != nil {
		return jwtx.Claims{}, domain.SessionToken{}, ErrTokenInvalid
	}

	record, err := s.Store.SessionTokens().GetSessionTokenByHash(ctx, cryptox.FingerprintToken(rawToken))
	if err != nil {
		return jwtx.Claims{}, domain.SessionToken{}, ErrTokenInvalid
	}

	if !record.Live(now) {
		return jwtx.Claims{}, domain.SessionToken{}, ErrTokenInvalid
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, record.AccountID)
	if err != nil || !account.IsActive {
		return jwtx.Claims{}, domain.SessionToken{}, ErrTokenInvalid
	}

	if err := s.Store.SessionTokens().TouchLastUsed(ctx, record.ID, now); err != nil {
		// Staleness of last_used_at is acceptable; don't fail the request.
		l.Warn("failed to touch last_used_at", "token_id", record.ID, "err", err)
	}

	return claims, record, nil
}

// Authenticate adapts Verify for HTTP middleware: claims plus the backing
// session record id.
func (s *AuthorityService) Authenticate(ctx context.Context, rawToken string) (jwtx.Claims, string, error) {
	claims, record, err := s.Verify(ctx, rawToken)
	if err != nil {
		return jwtx.Claims{}, "", err
	}
	return claims, record.ID, nil
}

// Logout invalidates the presented token. Idempotent: a token that is
// already invalid or unknown is not an error, to avoid token scanning.
func (s *AuthorityService) Logout(ctx context.Context, rawToken string) error {
	now := time.Now().UTC()

	record, err := s.Store.SessionTokens().GetSessionTokenByHash(ctx, cryptox.FingerprintToken(rawToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.Store.SessionTokens().InvalidateToken(ctx, record.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil // already invalid
		}
		return err
	}

	slogx.FromContext(ctx).Info("session logged out", "account_id", record.AccountID, "token_id", record.ID)
	return nil
}

// LogoutOtherDevices invalidates every token of the account except those
// bound to the presenting device. This is the supported self-service path
// out of ACCOUNT_ACTIVE_ON_OTHER_DEVICE: evict the other device, retry
// login.
func (s *AuthorityService) LogoutOtherDevices(
	ctx context.Context,
	accountID string,
	deviceHash string,
	hashTimestamp int64,
) (int64, error) {
	now := time.Now().UTC()

	processed, err := s.processIncomingHash(deviceHash, hashTimestamp, now)
	if err != nil {
		return 0, err
	}

	count, err := s.Store.SessionTokens().InvalidateAccountTokensExcept(ctx, accountID, processed, now)
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("other devices logged out", "account_id", accountID, "invalidated", count)
	return count, nil
}

// ForceLogout invalidates all tokens for the account, clearing every
// device. Used for deactivation and explicit recovery.
func (s *AuthorityService) ForceLogout(ctx context.Context, accountID string) (int64, error) {
	now := time.Now().UTC()

	count, err := s.Store.SessionTokens().InvalidateAccountTokens(ctx, accountID, now)
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("force logout", "account_id", accountID, "invalidated", count)
	return count, nil
}

// ActiveSessions lists the account's live tokens with the device hash
// redacted for display; the full processed hash never leaves the server.
func (s *AuthorityService) ActiveSessions(ctx context.Context, accountID, currentTokenID string) ([]domain.SessionSummary, error) {
	now := time.Now().UTC()

	tokens, err := s.Store.SessionTokens().ListLiveTokensByAccount(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.SessionSummary, 0, len(tokens))
	for _, t := range tokens {
		summaries = append(summaries, t.Summary(currentTokenID))
	}
	return summaries, nil
}

// processIncomingHash enforces the wire format and freshness window, then
// salts the client hash into its stored form. Raw client hashes never get
// past this point.
func (s *AuthorityService) processIncomingHash(deviceHash string, hashTimestamp int64, now time.Time) (string, error) {
	if !cryptox.IsDeviceHash(deviceHash) {
		return "", ErrInvalidDeviceHash
	}

	if s.FreshnessWindow > 0 {
		ts := time.Unix(hashTimestamp, 0).UTC()
		drift := now.Sub(ts)
		if drift < 0 {
			drift = -drift
		}
		if hashTimestamp <= 0 || drift > s.FreshnessWindow {
			return "", ErrStaleDeviceHash
		}
	}

	return cryptox.ProcessDeviceHash(deviceHash, s.DeviceSalt), nil
}
