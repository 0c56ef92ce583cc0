package http

import (
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// ForceLogoutHandler serves POST /v1/auth/force-logout. Clears the
// account's sessions on every device, the presenting one included.
type ForceLogoutHandler struct {
	AuthorityService *service.AuthorityService
}

// ServeHTTP godoc
//
//	@Summary		Force Logout
//	@Description	Invalidates every session of the authenticated account, including the one making this request.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	devicesdk.InvalidatedResponse	"invalidated count"
//	@Failure		401	{object}	devicesdk.ErrorResponse			"token_invalid"
//	@Router			/v1/auth/force-logout [post].
func (h *ForceLogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromCtx(ctx)
	if accountID == "" {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	count, err := h.AuthorityService.ForceLogout(ctx, accountID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, devicesdk.InvalidatedResponse{Invalidated: count})
}
