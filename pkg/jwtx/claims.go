package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTokenTTL is the default lifetime for session tokens.
// Device-bound sessions are long-lived by design; the exclusivity check on
// the server is what actually bounds concurrent use.
const DefaultSessionTokenTTL = 24 * time.Hour

// Claims are session-token claims. Additive changes only, so older tokens
// keep parsing.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session record identifier in the token store.
	SID string `json:"sid,omitempty"`

	// DeviceHash is the server-processed device hash this session is bound
	// to. Never the raw client value.
	DeviceHash string `json:"dvh,omitempty"`

	// Username for the authenticated account, for display only.
	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a device-bound session.
func NewSessionClaims(
	subject, sid, deviceHash string,
	ttl time.Duration,
	issuer string,
	username string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:        sid,
		DeviceHash: deviceHash,
		Username:   username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
