package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/slogx"
)

// writeServiceError maps a service sentinel error onto its wire error.
// Anything unmapped is a storage or programming fault and logged as such.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		devicesdk.ErrValidation.WriteError(w)
	case errors.Is(err, service.ErrInvalidDeviceHash):
		devicesdk.ErrInvalidDeviceHash.WriteError(w)
	case errors.Is(err, service.ErrStaleDeviceHash):
		devicesdk.ErrStaleDeviceHash.WriteError(w)
	case errors.Is(err, service.ErrDeviceAlreadyRegistered):
		devicesdk.ErrDeviceAlreadyRegistered.WriteError(w)
	case errors.Is(err, service.ErrAccountActiveOnOtherDevice):
		devicesdk.ErrAccountActiveOnOtherDevice.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		devicesdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrAccountInactive):
		devicesdk.ErrAccountInactive.WriteError(w)
	case errors.Is(err, service.ErrAccountExists):
		devicesdk.ErrAccountExists.WriteError(w)
	case errors.Is(err, service.ErrTokenInvalid):
		devicesdk.ErrTokenInvalid.WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		// Account lookups behind auth: the principal vanished mid-request.
		devicesdk.ErrTokenInvalid.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("request failed", "err", err)
		devicesdk.ErrStorage.WriteError(w)
	}
}
