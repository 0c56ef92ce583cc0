package devicebind

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DeviceHash is the value transmitted to the server per authentication
// attempt. Value is a 64-char hex digest; Timestamp is the unix second the
// hash was derived at, sent in the clear so the server can enforce a
// freshness window.
type DeviceHash struct {
	Value     string
	Timestamp int64
}

// GenerateDeviceHash validates the local binding and derives a fresh hash
// from it. The raw device ID and fingerprint are folded into the digest and
// never transmitted themselves. contextData lets callers bind the hash to a
// request context (e.g. the username being authenticated).
func (s *Store) GenerateDeviceHash(contextData string) (DeviceHash, error) {
	if err := s.Validate(); err != nil {
		return DeviceHash{}, err
	}

	binding, err := s.load()
	if err != nil {
		return DeviceHash{}, &ValidationError{Reason: ReasonMissing}
	}

	ts := s.now().UTC().Unix()
	composite := strings.Join([]string{
		binding.DeviceID,
		binding.Fingerprint,
		strconv.FormatInt(ts, 10),
		contextData,
	}, "|")

	sum := sha256.Sum256([]byte(composite))
	return DeviceHash{
		Value:     hex.EncodeToString(sum[:]),
		Timestamp: ts,
	}, nil
}

func (h DeviceHash) String() string {
	return fmt.Sprintf("%s@%d", h.Value, h.Timestamp)
}
