package devicebind

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tether/pkg/hwid"
)

func testCollector() *hwid.Collector {
	files := map[string]string{
		"/etc/machine-id": "a1b2c3d4e5f60718293a4b5c6d7e8f90\n",
		"/proc/cpuinfo":   "model name\t: Test CPU\n",
		"/proc/meminfo":   "MemTotal: 8192000 kB\n",
	}

	mac, _ := net.ParseMAC("aa:bb:cc:00:11:22")
	return &hwid.Collector{
		ReadFile: func(name string) ([]byte, error) {
			if data, ok := files[name]; ok {
				return []byte(data), nil
			}
			return nil, errors.New("no such file")
		},
		Hostname: func() (string, error) { return "bind-test-host", nil },
		Interfaces: func() ([]net.Interface, error) {
			return []net.Interface{{Name: "eth0", HardwareAddr: mac}}, nil
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), testCollector(), nil)
}

func TestInitializeCreatesBinding(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	// Nothing bound yet.
	var verr *ValidationError
	require.ErrorAs(t, s.Validate(), &verr)
	require.Equal(t, ReasonMissing, verr.Reason)

	binding, err := s.InitializeIfNeeded()
	require.NoError(t, err)
	require.NotEmpty(t, binding.DeviceID)
	require.Len(t, binding.Fingerprint, 64)
	require.False(t, binding.LowConfidence)
	require.NoError(t, s.Validate())

	// Idempotent: a second call returns the same binding.
	again, err := s.InitializeIfNeeded()
	require.NoError(t, err)
	require.Equal(t, binding.DeviceID, again.DeviceID)
}

func TestBindingFilesAreEncrypted(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	binding, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	for _, name := range []string{bindingFile, backupFile} {
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		require.NoError(t, err)
		require.NotContains(t, string(raw), binding.DeviceID)
		require.NotContains(t, string(raw), binding.Fingerprint)
	}
}

func TestValidateDetectsHardwareChange(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	// Simulated hostname change flips validation to fingerprint-mismatch.
	s.collector.Hostname = func() (string, error) { return "some-other-host", nil }

	var verr *ValidationError
	require.ErrorAs(t, s.Validate(), &verr)
	require.Equal(t, ReasonMismatch, verr.Reason)
}

func TestValidateDetectsExpiry(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(MaxBindingAge + time.Hour) }

	var verr *ValidationError
	require.ErrorAs(t, s.Validate(), &verr)
	require.Equal(t, ReasonExpired, verr.Reason)
}

func TestResetDestroysBindingAndBackup(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	first, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	_, err = os.Stat(filepath.Join(s.dir, bindingFile))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.dir, backupFile))
	require.True(t, os.IsNotExist(err))

	second, err := s.InitializeIfNeeded()
	require.NoError(t, err)
	require.NotEqual(t, first.DeviceID, second.DeviceID)
}

func TestPrimaryRestoredFromBackup(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	binding, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	// Corrupt the primary; the backup should carry the binding through.
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, bindingFile), []byte("garbage"), 0600))

	loaded, err := s.load()
	require.NoError(t, err)
	require.Equal(t, binding.DeviceID, loaded.DeviceID)
	require.NoError(t, s.Validate())
}

func TestStoreUnreadableOnDifferentHardware(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewStore(dir, testCollector(), nil)
	_, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	// Same files, different machine: the store key no longer derives.
	other := testCollector()
	other.ReadFile = func(name string) ([]byte, error) {
		if name == "/etc/machine-id" {
			return []byte("ffffffffffffffffffffffffffffffff\n"), nil
		}
		return testCollector().ReadFile(name)
	}
	moved := NewStore(dir, other, nil)

	var verr *ValidationError
	require.ErrorAs(t, moved.Validate(), &verr)
	require.Equal(t, ReasonMissing, verr.Reason)
}

func TestGenerateDeviceHash(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.InitializeIfNeeded()
	require.NoError(t, err)

	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	hash, err := s.GenerateDeviceHash("login:alice")
	require.NoError(t, err)
	require.Len(t, hash.Value, 64)
	require.Equal(t, fixed.Unix(), hash.Timestamp)

	// Binding material never appears in the transmitted value.
	binding, err := s.load()
	require.NoError(t, err)
	require.NotContains(t, hash.Value, binding.DeviceID)

	// Same instant, same context: deterministic. Different context: not.
	same, err := s.GenerateDeviceHash("login:alice")
	require.NoError(t, err)
	require.Equal(t, hash.Value, same.Value)

	other, err := s.GenerateDeviceHash("login:bob")
	require.NoError(t, err)
	require.NotEqual(t, hash.Value, other.Value)
}

func TestGenerateDeviceHashFailsWithoutBinding(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.GenerateDeviceHash("ctx")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ReasonMissing, verr.Reason)
}
