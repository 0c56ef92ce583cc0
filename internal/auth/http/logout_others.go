package http

import (
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// LogoutOthersHandler serves POST /v1/auth/logout-others. The presenting
// device proves itself with a fresh device hash and every other device's
// session is invalidated. This is the self-service path out of an
// account_active_on_other_device conflict.
type LogoutOthersHandler struct {
	AuthorityService *service.AuthorityService
}

// ServeHTTP godoc
//
//	@Summary		Logout Other Devices
//	@Description	Invalidates every session of the authenticated account except those bound to the presenting device.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	devicesdk.InvalidatedResponse	"invalidated count"
//	@Failure		400	{object}	devicesdk.ErrorResponse			"validation_error, invalid_device_hash, stale_device_hash"
//	@Failure		401	{object}	devicesdk.ErrorResponse			"token_invalid"
//	@Router			/v1/auth/logout-others [post].
func (h *LogoutOthersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromCtx(ctx)
	if accountID == "" {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	var req devicesdk.LogoutOthersRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		devicesdk.ErrValidation.WriteError(w)
		return
	}

	count, err := h.AuthorityService.LogoutOtherDevices(ctx, accountID, req.DeviceHash, req.DeviceHashTimestamp)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, devicesdk.InvalidatedResponse{Invalidated: count})
}
