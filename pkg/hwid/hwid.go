// Package hwid derives a stable fingerprint from locally observable machine
// characteristics. The fingerprint is deterministic across reboots but
// sensitive to hardware changes, which is exactly what a device binding
// wants: same machine, same digest.
package hwid

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"
)

// Attributes is the fixed set of signals feeding the fingerprint.
type Attributes struct {
	MachineID string
	CPUModel  string
	Platform  string
	Arch      string
	Hostname  string
	TotalMem  string
	MACs      []string // sorted, physical adapters only
}

// Fallback values substituted when an attribute cannot be read. Using fixed
// strings instead of aborting keeps the extractor total; callers see the
// degradation through the LowConfidence flag.
const (
	fallbackMachineID = "unknown-machine"
	fallbackCPU       = "unknown-cpu"
	fallbackHostname  = "unknown-host"
	fallbackMem       = "unknown-mem"
)

// virtualMACPrefixes are well-known vendor prefixes for hypervisor and
// container adapters. Excluding them keeps the fingerprint stable when VMs
// or docker bridges come and go.
var virtualMACPrefixes = []string{
	"00:05:69", // VMware
	"00:0c:29", // VMware
	"00:1c:14", // VMware
	"00:50:56", // VMware
	"08:00:27", // VirtualBox
	"0a:00:27", // VirtualBox host-only
	"52:54:00", // QEMU/KVM
	"00:15:5d", // Hyper-V
	"00:16:3e", // Xen
	"02:42",    // Docker bridge
}

// Collector reads hardware attributes. The reader funcs are swappable so
// tests can simulate attribute changes or read failures.
type Collector struct {
	ReadFile   func(name string) ([]byte, error)
	Hostname   func() (string, error)
	Interfaces func() ([]net.Interface, error)
}

// NewCollector returns a Collector backed by the real machine.
func NewCollector() *Collector {
	return &Collector{
		ReadFile:   os.ReadFile,
		Hostname:   os.Hostname,
		Interfaces: net.Interfaces,
	}
}

// Collect gathers all attributes. The second return is true when every
// attribute was read from the machine; false means at least one fell back
// to a fixed value and the resulting fingerprint is low confidence.
func (c *Collector) Collect() (Attributes, bool) {
	complete := true

	attrs := Attributes{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	if id, ok := c.machineID(); ok {
		attrs.MachineID = id
	} else {
		attrs.MachineID = fallbackMachineID
		complete = false
	}

	if cpu, ok := c.cpuModel(); ok {
		attrs.CPUModel = cpu
	} else {
		attrs.CPUModel = fallbackCPU
		complete = false
	}

	if host, err := c.Hostname(); err == nil && host != "" {
		attrs.Hostname = host
	} else {
		attrs.Hostname = fallbackHostname
		complete = false
	}

	if mem, ok := c.totalMemory(); ok {
		attrs.TotalMem = mem
	} else {
		attrs.TotalMem = fallbackMem
		complete = false
	}

	macs, ok := c.physicalMACs()
	if !ok {
		complete = false
	}
	attrs.MACs = macs

	return attrs, complete
}

// Fingerprint collects attributes and digests them. The bool mirrors
// Collect's completeness flag.
func (c *Collector) Fingerprint() (string, bool) {
	attrs, complete := c.Collect()
	return attrs.Fingerprint(), complete
}

// Fingerprint returns the SHA-256 hex digest over the canonical attribute
// encoding. Identical attributes always produce an identical digest.
func (a Attributes) Fingerprint() string {
	parts := []string{
		a.MachineID,
		a.CPUModel,
		a.Platform,
		a.Arch,
		a.Hostname,
		a.TotalMem,
	}
	parts = append(parts, a.MACs...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// StoreKeyMaterial returns bytes for deriving the local binding store's
// encryption key. It deliberately uses a different attribute subset and
// separator than Fingerprint so the store key is not derivable from a
// leaked fingerprint.
func (c *Collector) StoreKeyMaterial() []byte {
	attrs, _ := c.Collect()
	parts := []string{attrs.MachineID, attrs.Platform, attrs.Arch, attrs.CPUModel}
	return []byte(strings.Join(parts, "\x1f"))
}

func (c *Collector) machineID() (string, bool) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := c.ReadFile(path); err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id, true
			}
		}
	}
	return "", false
}

func (c *Collector) cpuModel() (string, bool) {
	data, err := c.ReadFile("/proc/cpuinfo")
	if err != nil {
		return "", false
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "model name", "Processor", "cpu model":
			if v := strings.TrimSpace(value); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (c *Collector) totalMemory() (string, bool) {
	data, err := c.ReadFile("/proc/meminfo")
	if err != nil {
		return "", false
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		if v := strings.TrimSpace(strings.TrimPrefix(line, "MemTotal:")); v != "" {
			return v, true
		}
	}
	return "", false
}

// physicalMACs returns the sorted MAC addresses of non-virtual, non-loopback
// adapters. The bool is false only when the interface list itself could not
// be read; a machine with zero physical adapters is still a complete read.
func (c *Collector) physicalMACs() ([]string, bool) {
	ifaces, err := c.Interfaces()
	if err != nil {
		return nil, false
	}

	var macs []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		mac := strings.ToLower(iface.HardwareAddr.String())
		if mac == "" || isVirtualMAC(mac) {
			continue
		}
		macs = append(macs, mac)
	}

	sort.Strings(macs)
	return macs, true
}

func isVirtualMAC(mac string) bool {
	for _, prefix := range virtualMACPrefixes {
		if strings.HasPrefix(mac, prefix) {
			return true
		}
	}
	return false
}
