package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout. It invalidates the token in
// the Authorization header. Idempotent: unknown or already-dead tokens
// still return 204 to prevent token scanning.
type LogoutHandler struct {
	AuthorityService *service.AuthorityService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Invalidates the presented session token. Returns 204 even for unknown or already-invalid tokens.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Session token invalidated (or was already invalid)"
//	@Failure		401	{object}	devicesdk.ErrorResponse	"token_invalid - no bearer token presented"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

	if err := h.AuthorityService.Logout(ctx, raw); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
