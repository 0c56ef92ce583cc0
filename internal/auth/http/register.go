package http

import (
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// RegisterHandler serves POST /v1/auth/register. A successful registration
// binds the new account to the presenting device and returns its first
// session token, so separate register-then-login round trips are never
// needed.
type RegisterHandler struct {
	AuthorityService *service.AuthorityService
}

// ServeHTTP godoc
//
//	@Summary		Register Account
//	@Description	Creates an account bound to the presenting device and issues its first session token.
//	@Description	Fails with device_already_registered if this device already backs another account.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	devicesdk.SessionGrantResponse	"account, session_token, expires_at"
//	@Failure		400	{object}	devicesdk.ErrorResponse			"validation_error, invalid_device_hash, stale_device_hash"
//	@Failure		409	{object}	devicesdk.ErrorResponse			"account_exists, device_already_registered"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req devicesdk.RegisterRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		devicesdk.ErrValidation.WriteError(w)
		return
	}

	grant, err := h.AuthorityService.Register(ctx,
		req.Username, req.Email, req.Password,
		req.DeviceHash, req.DeviceHashTimestamp,
	)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, grant)
}
