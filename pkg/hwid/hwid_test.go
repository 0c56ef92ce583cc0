package hwid

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeCollector() *Collector {
	files := map[string]string{
		"/etc/machine-id": "d3b07384d113edec49eaa6238ad5ff00\n",
		"/proc/cpuinfo":   "processor\t: 0\nmodel name\t: Example CPU @ 3.20GHz\n",
		"/proc/meminfo":   "MemTotal:       16314964 kB\nMemFree:         1234 kB\n",
	}

	return &Collector{
		ReadFile: func(name string) ([]byte, error) {
			if data, ok := files[name]; ok {
				return []byte(data), nil
			}
			return nil, errors.New("no such file")
		},
		Hostname: func() (string, error) { return "workstation-01", nil },
		Interfaces: func() ([]net.Interface, error) {
			return []net.Interface{
				{Name: "eth0", HardwareAddr: mustMAC("aa:bb:cc:dd:ee:ff")},
				{Name: "eth1", HardwareAddr: mustMAC("10:20:30:40:50:60")},
			}, nil
		},
	}
}

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func TestFingerprintIsIdempotent(t *testing.T) {
	t.Parallel()

	c := fakeCollector()
	first, complete := c.Fingerprint()
	require.True(t, complete)

	second, _ := c.Fingerprint()
	require.Equal(t, first, second)
	require.Len(t, first, 64)
}

func TestFingerprintChangesWhenAttributeChanges(t *testing.T) {
	t.Parallel()

	c := fakeCollector()
	before, _ := c.Fingerprint()

	c.Hostname = func() (string, error) { return "different-host", nil }
	after, _ := c.Fingerprint()

	require.NotEqual(t, before, after)
}

func TestVirtualAdaptersExcluded(t *testing.T) {
	t.Parallel()

	c := fakeCollector()
	baseline, _ := c.Fingerprint()

	// Adding hypervisor and docker adapters must not move the fingerprint.
	c.Interfaces = func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "eth0", HardwareAddr: mustMAC("aa:bb:cc:dd:ee:ff")},
			{Name: "eth1", HardwareAddr: mustMAC("10:20:30:40:50:60")},
			{Name: "vmnet8", HardwareAddr: mustMAC("00:50:56:12:34:56")},
			{Name: "vboxnet0", HardwareAddr: mustMAC("08:00:27:aa:bb:cc")},
			{Name: "docker0", HardwareAddr: mustMAC("02:42:ac:11:00:02")},
			{Name: "virbr0", HardwareAddr: mustMAC("52:54:00:99:88:77")},
		}, nil
	}

	withVirtual, _ := c.Fingerprint()
	require.Equal(t, baseline, withVirtual)
}

func TestMACOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	c := fakeCollector()
	baseline, _ := c.Fingerprint()

	c.Interfaces = func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "eth1", HardwareAddr: mustMAC("10:20:30:40:50:60")},
			{Name: "eth0", HardwareAddr: mustMAC("aa:bb:cc:dd:ee:ff")},
		}, nil
	}

	reordered, _ := c.Fingerprint()
	require.Equal(t, baseline, reordered)
}

func TestReadFailuresDegradeGracefully(t *testing.T) {
	t.Parallel()

	c := fakeCollector()
	c.ReadFile = func(string) ([]byte, error) { return nil, errors.New("denied") }

	fp, complete := c.Fingerprint()
	require.False(t, complete)
	require.Len(t, fp, 64)

	// Degraded reads are still deterministic.
	again, _ := c.Fingerprint()
	require.Equal(t, fp, again)
}

func TestStoreKeyMaterialDiffersFromFingerprint(t *testing.T) {
	t.Parallel()

	c := fakeCollector()
	fp, _ := c.Fingerprint()
	require.NotEqual(t, fp, string(c.StoreKeyMaterial()))
	require.NotEmpty(t, c.StoreKeyMaterial())
}
