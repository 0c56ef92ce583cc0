package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDeviceHash(t *testing.T) {
	t.Parallel()

	valid := strings.Repeat("0123456789abcdef", 4)
	require.Len(t, valid, DeviceHashLength)
	require.True(t, IsDeviceHash(valid))

	require.False(t, IsDeviceHash(""))
	require.False(t, IsDeviceHash(valid[:63]))
	require.False(t, IsDeviceHash(valid+"0"))
	require.False(t, IsDeviceHash(strings.ToUpper(valid)))
	require.False(t, IsDeviceHash(strings.Repeat("g", DeviceHashLength)))
}

func TestProcessDeviceHashIsSaltedAndDeterministic(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("ab", 32)

	a := ProcessDeviceHash(hash, "salt-one")
	b := ProcessDeviceHash(hash, "salt-one")
	c := ProcessDeviceHash(hash, "salt-two")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, hash)
	require.Len(t, a, DeviceHashLength)
}
