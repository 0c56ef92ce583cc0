package cryptox

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, SealKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	plaintext := []byte(`{"device_id":"abc","fingerprint":"def"}`)

	sealed, err := Seal(key, plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, sealed)

	opened, err := Open(key, sealed)
	require.NoError(t, err)
	require.True(t, bytes.Equal(plaintext, opened))
}

func TestSealUsesFreshNonce(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	a, err := Seal(key, []byte("same plaintext"))
	require.NoError(t, err)
	b, err := Seal(key, []byte("same plaintext"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestOpenDetectsTampering(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	sealed, err := Seal(key, []byte("sensitive"))
	require.NoError(t, err)

	// Flip a bit somewhere in the ciphertext body.
	sealed[len(sealed)-4] ^= 0x01
	_, err = Open(key, sealed)
	require.ErrorIs(t, err, ErrSealOpen)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	sealed, err := Seal(testKey(t), []byte("sensitive"))
	require.NoError(t, err)

	_, err = Open(testKey(t), sealed)
	require.ErrorIs(t, err, ErrSealOpen)
}

func TestOpenRejectsTruncatedBlob(t *testing.T) {
	t.Parallel()

	_, err := Open(testKey(t), []byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrSealOpen)
}

func TestSealRequiresFullSizeKey(t *testing.T) {
	t.Parallel()

	_, err := Seal([]byte("short"), []byte("data"))
	require.Error(t, err)
}
