package devicesdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// Error codes returned by the device authority. The set is closed: clients
// branch on the code, never on the description text.
const (
	ErrorCodeValidation          = "validation_error"
	ErrorCodeInvalidDeviceHash   = "invalid_device_hash"
	ErrorCodeStaleDeviceHash     = "stale_device_hash"
	ErrorCodeDeviceRegistered    = "device_already_registered"
	ErrorCodeActiveOnOtherDevice = "account_active_on_other_device"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeAccountInactive     = "account_inactive"
	ErrorCodeAccountExists       = "account_exists"
	ErrorCodeTokenInvalid        = "token_invalid"
	ErrorCodeStorage             = "storage_error"
)

// AuthError is the structured error payload used on both sides of the wire:
// handlers write it, the SDK client parses responses back into it.
type AuthError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this AuthError to an HTTP response writer.
func (e *AuthError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrValidation is returned when the request is missing a required field
	// or a field fails basic validation.
	ErrValidation = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "the request is malformed or missing required fields",
	}

	// ErrInvalidDeviceHash is returned when the device hash is not a
	// 64-character lowercase hex digest.
	ErrInvalidDeviceHash = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidDeviceHash,
		Description: "device hash is malformed",
	}

	// ErrStaleDeviceHash is returned when the device hash timestamp is
	// outside the server's freshness window. Re-derive the hash and retry.
	ErrStaleDeviceHash = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeStaleDeviceHash,
		Description: "device hash timestamp is outside the accepted window",
	}

	// ErrDeviceAlreadyRegistered is returned when this device already backs
	// another account.
	ErrDeviceAlreadyRegistered = &AuthError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDeviceRegistered,
		Description: "this device is already registered to an account",
	}

	// ErrAccountActiveOnOtherDevice is returned when the account holds a
	// live session on a different device. Resolve with logout-others, then
	// retry the login.
	ErrAccountActiveOnOtherDevice = &AuthError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeActiveOnOtherDevice,
		Description: "account has an active session on another device",
	}

	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike.
	ErrInvalidCredentials = &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid username or password",
	}

	// ErrAccountInactive is returned when the account exists but has been
	// deactivated.
	ErrAccountInactive = &AuthError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccountInactive,
		Description: "account is deactivated",
	}

	// ErrAccountExists is returned when the username or email is taken.
	ErrAccountExists = &AuthError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAccountExists,
		Description: "an account with this username or email already exists",
	}

	// ErrTokenInvalid is returned when the session token is missing,
	// malformed, expired or revoked.
	ErrTokenInvalid = &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenInvalid,
		Description: "the session token is missing, invalid, expired or revoked",
	}

	// ErrStorage is returned for unexpected persistence failures. The
	// request may be retried.
	ErrStorage = &AuthError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeStorage,
		Description: "internal storage error",
	}
)

// NewAuthError creates an AuthError with a custom description while keeping
// the closed code set.
func NewAuthError(statusCode int, code, description string) *AuthError {
	return &AuthError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// parseErrorResponse turns a non-2xx HTTP response into a typed *AuthError.
// Returns nil for success responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &AuthError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &AuthError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeStorage,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
