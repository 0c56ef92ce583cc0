package http

import (
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// LoginHandler serves POST /v1/auth/login. The device conflict check and
// the token issue happen atomically in the service, so two racing logins
// can never both receive a grant.
type LoginHandler struct {
	AuthorityService *service.AuthorityService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Authenticates the account from the presenting device and issues a session token.
//	@Description	While another device holds the account's live session the login fails with
//	@Description	account_active_on_other_device; resolve via /v1/auth/logout-others and retry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	devicesdk.SessionGrantResponse	"account, session_token, expires_at"
//	@Failure		400	{object}	devicesdk.ErrorResponse			"validation_error, invalid_device_hash, stale_device_hash"
//	@Failure		401	{object}	devicesdk.ErrorResponse			"invalid_credentials"
//	@Failure		403	{object}	devicesdk.ErrorResponse			"account_inactive"
//	@Failure		409	{object}	devicesdk.ErrorResponse			"account_active_on_other_device"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req devicesdk.LoginRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		devicesdk.ErrValidation.WriteError(w)
		return
	}

	grant, err := h.AuthorityService.Login(ctx,
		req.Username, req.Password,
		req.DeviceHash, req.DeviceHashTimestamp,
	)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}
