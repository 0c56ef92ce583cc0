package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// VerifyHandler serves GET /v1/auth/verify. The authn middleware has
// already done the work (signature, session record, account standing);
// this handler just echoes what the token grants.
type VerifyHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Verify Session Token
//	@Description	Confirms the presented session token is live and returns the identity it grants.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	devicesdk.VerifyResponse	"account_id, username, session_id, expires_at"
//	@Failure		401	{object}	devicesdk.ErrorResponse		"token_invalid"
//	@Router			/v1/auth/verify [get].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	httpx.WriteJSON(w, http.StatusOK, devicesdk.VerifyResponse{
		AccountID: claims.Subject,
		Username:  claims.Username,
		SessionID: httpx.SessionIDFromCtx(ctx),
		ExpiresAt: expiresAt,
	})
}
