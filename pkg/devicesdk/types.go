package devicesdk

import "time"

// ErrorResponse is the wire shape of an error payload.
// Client code should use the AuthError type from errors.go instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RegisterRequest creates an account bound to the presenting device.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	// DeviceHash is the 64-char hex digest derived on the device;
	// DeviceHashTimestamp is the unix time folded into it. The server
	// rejects hashes whose timestamp drifts outside its freshness window.
	DeviceHash          string `json:"device_hash"`
	DeviceHashTimestamp int64  `json:"device_hash_ts"`
}

// LoginRequest authenticates an account from the presenting device.
type LoginRequest struct {
	Username            string `json:"username"`
	Password            string `json:"password"`
	DeviceHash          string `json:"device_hash"`
	DeviceHashTimestamp int64  `json:"device_hash_ts"`
}

// LogoutOthersRequest evicts every session except the presenting device's.
type LogoutOthersRequest struct {
	DeviceHash          string `json:"device_hash"`
	DeviceHashTimestamp int64  `json:"device_hash_ts"`
}

// AccountInfo is the public view of an account.
type AccountInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// SessionGrantResponse is returned by register and login.
type SessionGrantResponse struct {
	Account      AccountInfo `json:"account"`
	SessionToken string      `json:"session_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

// SessionInfo is the redacted view of a live session.
type SessionInfo struct {
	ID           string     `json:"id"`
	DevicePrefix string     `json:"device_prefix"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	Current      bool       `json:"current"`
}

// SessionsResponse lists the account's live sessions.
type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// VerifyResponse is returned by the verify endpoint.
type VerifyResponse struct {
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InvalidatedResponse reports how many sessions a bulk logout cleared.
type InvalidatedResponse struct {
	Invalidated int64 `json:"invalidated"`
}

// ReactivateRequest restores a deactivated account.
type ReactivateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest swaps the account password. All sessions are
// invalidated on success.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// DeleteAccountRequest confirms account deletion with the password.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// HealthResponse is returned by the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks breaks down readiness by dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
