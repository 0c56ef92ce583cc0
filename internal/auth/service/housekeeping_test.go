package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/tether/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	svc, st := newTestAuthority(t)
	ctx := context.Background()
	ts := time.Now().Unix()

	svc.SessionTTL = 50 * time.Millisecond
	grant, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22", deviceHash("home", ts), ts)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	hk := NewHousekeepingService(st, slog.Default(), time.Hour, time.Nanosecond)
	hk.cleanup()

	// The expired row was swept and, with a near-zero retention, purged.
	_, err = st.SessionTokens().GetSessionTokenByHash(ctx, cryptox.FingerprintToken(grant.Token))
	require.Error(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()
	_, st := newTestAuthority(t)

	hk := NewHousekeepingService(st, slog.Default(), time.Hour, 0)
	require.Equal(t, DefaultStaleRetention, hk.Retention)

	hk.Start()
	hk.Stop() // blocks until the worker is done; must not hang
}
