package service

import "errors"

// The closed set of error conditions the authority can return. Handlers map
// these one-to-one onto wire error codes; callers branch on the code, never
// on message text.
var (
	// ErrValidation covers malformed credentials or request fields. Never
	// mutates state; recoverable by correcting input.
	ErrValidation = errors.New("invalid_request")

	// ErrInvalidDeviceHash means the device hash failed the hex/length
	// format contract.
	ErrInvalidDeviceHash = errors.New("invalid_device_hash")

	// ErrStaleDeviceHash means the hash timestamp fell outside the
	// server's freshness window. The client should re-derive and retry.
	ErrStaleDeviceHash = errors.New("stale_device_hash")

	// ErrDeviceAlreadyRegistered: this device's processed hash already
	// backs another account's live session lineage. One device, one
	// account.
	ErrDeviceAlreadyRegistered = errors.New("device_already_registered")

	// ErrAccountActiveOnOtherDevice: the account holds a live token bound
	// to a different device. Resolved by logout-other-devices, then retry.
	ErrAccountActiveOnOtherDevice = errors.New("account_active_on_other_device")

	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrAccountExists      = errors.New("account_exists")

	// ErrTokenInvalid covers expired, invalidated, and malformed session
	// tokens alike. Recoverable by re-authenticating.
	ErrTokenInvalid = errors.New("token_invalid")
)
