package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/aussiebroadwan/tether/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore("file:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedAccount(t *testing.T, st *Store, username string) domain.Account {
	t.Helper()
	a := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "argon2:dummy",
		IsActive:     true,
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), a))
	return a
}

func token(accountID, processedHash string, expiresAt time.Time) domain.SessionToken {
	id := idx.New().String()
	return domain.SessionToken{
		ID:            id,
		AccountID:     accountID,
		ProcessedHash: processedHash,
		TokenHash:     "fp-" + id,
		ExpiresAt:     expiresAt,
		IsValid:       true,
	}
}

func TestAccountsRepo(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	a := seedAccount(t, st, "alice")

	t.Run("duplicate username and email map to ErrAlreadyExists", func(t *testing.T) {
		dup := a
		dup.ID = idx.New().String()
		require.ErrorIs(t, st.Accounts().CreateAccount(ctx, dup), store.ErrAlreadyExists)

		dup.Username = "other"
		require.ErrorIs(t, st.Accounts().CreateAccount(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := st.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)

		got, err = st.Accounts().GetAccountByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, a.ID, got.ID)

		_, err = st.Accounts().GetAccountByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("active flag round-trips", func(t *testing.T) {
		require.NoError(t, st.Accounts().SetAccountActive(ctx, a.ID, false))
		got, err := st.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive)
		require.NoError(t, st.Accounts().SetAccountActive(ctx, a.ID, true))
	})
}

func TestOneLiveTokenBackstop(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := seedAccount(t, st, "alice")

	first := token(a.ID, "hash-a", now.Add(time.Hour))
	require.NoError(t, st.SessionTokens().CreateSessionToken(ctx, first))

	// The partial unique index refuses a second live row outright.
	second := token(a.ID, "hash-b", now.Add(time.Hour))
	require.ErrorIs(t, st.SessionTokens().CreateSessionToken(ctx, second), store.ErrLiveTokenExists)

	// Once the first is invalidated the slot frees up.
	require.NoError(t, st.SessionTokens().InvalidateToken(ctx, first.ID, now))
	require.NoError(t, st.SessionTokens().CreateSessionToken(ctx, second))

	live, err := st.SessionTokens().FindLiveTokenByAccount(ctx, a.ID, now)
	require.NoError(t, err)
	require.Equal(t, second.ID, live.ID)
}

func TestSessionTokenQueries(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := seedAccount(t, st, "alice")
	bob := seedAccount(t, st, "bob")

	aliceTok := token(alice.ID, "hash-alice", now.Add(time.Hour))
	require.NoError(t, st.SessionTokens().CreateSessionToken(ctx, aliceTok))
	bobTok := token(bob.ID, "hash-bob", now.Add(-time.Minute))
	require.NoError(t, st.SessionTokens().CreateSessionToken(ctx, bobTok))

	t.Run("find live by device hash ignores expired rows", func(t *testing.T) {
		got, err := st.SessionTokens().FindLiveTokenByHash(ctx, "hash-alice", now)
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.AccountID)

		_, err = st.SessionTokens().FindLiveTokenByHash(ctx, "hash-bob", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("sweep flips naturally expired rows", func(t *testing.T) {
		require.NoError(t, st.SessionTokens().SweepExpiredTokens(ctx, bob.ID, now))
		got, err := st.SessionTokens().GetSessionTokenByHash(ctx, bobTok.TokenHash)
		require.NoError(t, err)
		require.False(t, got.IsValid)
		require.NotNil(t, got.InvalidatedAt)
	})

	t.Run("invalidate except keeps the named device", func(t *testing.T) {
		count, err := st.SessionTokens().InvalidateAccountTokensExcept(ctx, alice.ID, "hash-alice", now)
		require.NoError(t, err)
		require.EqualValues(t, 0, count)

		live, err := st.SessionTokens().FindLiveTokenByAccount(ctx, alice.ID, now)
		require.NoError(t, err)
		require.Equal(t, aliceTok.ID, live.ID)
	})

	t.Run("stale rows get purged past the cutoff", func(t *testing.T) {
		purged, err := st.SessionTokens().DeleteStaleTokens(ctx, now.Add(time.Minute))
		require.NoError(t, err)
		require.EqualValues(t, 1, purged)

		_, err = st.SessionTokens().GetSessionTokenByHash(ctx, bobTok.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("account delete cascades", func(t *testing.T) {
		require.NoError(t, st.Accounts().DeleteAccount(ctx, alice.ID))
		_, err := st.SessionTokens().GetSessionTokenByHash(ctx, aliceTok.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTxRollback(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	sentinel := store.ErrLiveTokenExists
	err := st.WithTx(ctx, func(tx store.Tx) error {
		seedErr := tx.Accounts().CreateAccount(ctx, domain.Account{
			ID: idx.New().String(), Username: "ghost", Email: "ghost@example.com",
			PasswordHash: "x", IsActive: true,
		})
		require.NoError(t, seedErr)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Accounts().GetAccountByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}
