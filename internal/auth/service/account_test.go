package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()
	svc, st := newTestAuthority(t)
	accounts := &AccountService{Store: st}
	ctx := context.Background()
	ts := time.Now().Unix()

	grant, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22", deviceHash("home", ts), ts)
	require.NoError(t, err)

	t.Run("deactivate kills the session and blocks login", func(t *testing.T) {
		require.NoError(t, accounts.Deactivate(ctx, grant.Account.ID))

		_, _, err := svc.Verify(ctx, grant.Token)
		require.ErrorIs(t, err, ErrTokenInvalid)

		_, err = svc.Login(ctx, "alice", "hunter22", deviceHash("home", ts), ts)
		require.ErrorIs(t, err, ErrAccountInactive)
	})

	t.Run("reactivate requires the right credentials", func(t *testing.T) {
		_, err := accounts.Reactivate(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		account, err := accounts.Reactivate(ctx, "alice", "hunter22")
		require.NoError(t, err)
		require.True(t, account.IsActive)

		grant, err = svc.Login(ctx, "alice", "hunter22", deviceHash("home", ts), ts)
		require.NoError(t, err)
	})

	t.Run("password change invalidates every session", func(t *testing.T) {
		err := accounts.ChangePassword(ctx, grant.Account.ID, "wrong", "newpass99")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		require.NoError(t, accounts.ChangePassword(ctx, grant.Account.ID, "hunter22", "newpass99"))

		_, _, err = svc.Verify(ctx, grant.Token)
		require.ErrorIs(t, err, ErrTokenInvalid)

		_, err = svc.Login(ctx, "alice", "hunter22", deviceHash("home", ts), ts)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		grant, err = svc.Login(ctx, "alice", "newpass99", deviceHash("home", ts), ts)
		require.NoError(t, err)
	})

	t.Run("delete requires the password and cascades to tokens", func(t *testing.T) {
		err := accounts.Delete(ctx, grant.Account.ID, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		require.NoError(t, accounts.Delete(ctx, grant.Account.ID, "newpass99"))

		_, err = st.Accounts().GetAccountByID(ctx, grant.Account.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		tokens, err := st.SessionTokens().ListLiveTokensByAccount(ctx, grant.Account.ID, time.Now().UTC())
		require.NoError(t, err)
		require.Empty(t, tokens)
	})
}
