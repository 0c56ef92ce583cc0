package domain

import "time"

// SessionToken models the stored session token record in the DB. The signed
// JWT itself is never stored; TokenHash is its deterministic fingerprint
// (base64url SHA-256).
type SessionToken struct {
	ID            string
	AccountID     string
	ProcessedHash string // salted server-side device hash this session is bound to
	TokenHash     string
	ExpiresAt     time.Time
	IsValid       bool
	InvalidatedAt *time.Time
	LastUsedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Live reports whether the token still grants access at the given instant.
// An account holds at most one live token at a time; that invariant is
// enforced at issuance, not here.
func (t SessionToken) Live(now time.Time) bool {
	return t.IsValid && now.Before(t.ExpiresAt)
}

// SessionSummary is the redacted view of a live session for display. The
// processed hash is truncated so the full value never leaves the server.
type SessionSummary struct {
	ID           string     `json:"id"`
	DevicePrefix string     `json:"device_prefix"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	Current      bool       `json:"current"`
}

// DevicePrefixLen is how many leading characters of the processed hash are
// exposed in session summaries.
const DevicePrefixLen = 12

// Summary redacts a token for display purposes.
func (t SessionToken) Summary(currentTokenID string) SessionSummary {
	prefix := t.ProcessedHash
	if len(prefix) > DevicePrefixLen {
		prefix = prefix[:DevicePrefixLen]
	}
	return SessionSummary{
		ID:           t.ID,
		DevicePrefix: prefix,
		CreatedAt:    t.CreatedAt,
		ExpiresAt:    t.ExpiresAt,
		LastUsedAt:   t.LastUsedAt,
		Current:      t.ID == currentTokenID,
	}
}

// SessionGrant is what a successful login or registration returns: the
// signed token plus the public account fields.
type SessionGrant struct {
	Account   PublicAccount `json:"account"`
	Token     string        `json:"session_token"`
	ExpiresAt time.Time     `json:"expires_at"`
}
