package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeviceHashLength is the expected length of a client device hash: a full
// SHA-256 digest rendered as lowercase hex.
const DeviceHashLength = 64

// IsDeviceHash reports whether s satisfies the device hash wire format.
func IsDeviceHash(s string) bool {
	if len(s) != DeviceHashLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ProcessDeviceHash rehashes a client-supplied device hash with a
// server-held salt. Only the processed form is ever compared or stored, so
// the server side holds nothing that maps back to the raw device identity.
func ProcessDeviceHash(deviceHash, salt string) string {
	sum := sha256.Sum256([]byte(deviceHash + salt))
	return hex.EncodeToString(sum[:])
}
