package http

import (
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// SessionsHandler serves GET /v1/auth/sessions. Device hashes are
// truncated to a short prefix; the full processed hash never leaves the
// server.
type SessionsHandler struct {
	AuthorityService *service.AuthorityService
}

// ServeHTTP godoc
//
//	@Summary		List Active Sessions
//	@Description	Lists the authenticated account's live sessions with redacted device identifiers.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	devicesdk.SessionsResponse	"sessions"
//	@Failure		401	{object}	devicesdk.ErrorResponse		"token_invalid"
//	@Router			/v1/auth/sessions [get].
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromCtx(ctx)
	if accountID == "" {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	summaries, err := h.AuthorityService.ActiveSessions(ctx, accountID, httpx.SessionIDFromCtx(ctx))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	sessions := make([]devicesdk.SessionInfo, 0, len(summaries))
	for _, s := range summaries {
		sessions = append(sessions, devicesdk.SessionInfo{
			ID:           s.ID,
			DevicePrefix: s.DevicePrefix,
			CreatedAt:    s.CreatedAt,
			ExpiresAt:    s.ExpiresAt,
			LastUsedAt:   s.LastUsedAt,
			Current:      s.Current,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, devicesdk.SessionsResponse{Sessions: sessions})
}
