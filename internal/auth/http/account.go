package http

import (
	"net/http"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/pkg/devicesdk"
	"github.com/aussiebroadwan/tether/pkg/httpx"
)

// AccountHandler bundles the account lifecycle endpoints. Everything here
// that changes account standing also clears session tokens in the service
// layer.
type AccountHandler struct {
	AccountService *service.AccountService
}

// HandleDeactivate godoc
//
//	@Summary		Deactivate Account
//	@Description	Deactivates the authenticated account and invalidates every session token.
//	@Description	The account can later be restored via /v1/account/reactivate.
//	@Tags			Account
//	@Security		BearerAuth
//	@Success		204	"Account deactivated"
//	@Failure		401	{object}	devicesdk.ErrorResponse	"token_invalid"
//	@Router			/v1/account/deactivate [post].
func (h *AccountHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromCtx(ctx)
	if accountID == "" {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	if err := h.AccountService.Deactivate(ctx, accountID); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleReactivate godoc
//
//	@Summary		Reactivate Account
//	@Description	Restores a deactivated account after re-verifying its credentials. No session is
//	@Description	issued; log in afterwards.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	devicesdk.AccountInfo	"restored account"
//	@Failure		400	{object}	devicesdk.ErrorResponse	"validation_error"
//	@Failure		401	{object}	devicesdk.ErrorResponse	"invalid_credentials"
//	@Router			/v1/account/reactivate [post].
func (h *AccountHandler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req devicesdk.ReactivateRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		devicesdk.ErrValidation.WriteError(w)
		return
	}

	account, err := h.AccountService.Reactivate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountInfo(account))
}

// HandleChangePassword godoc
//
//	@Summary		Change Password
//	@Description	Verifies the current password, sets the new one and invalidates every session
//	@Description	so all devices re-authenticate.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Success		204	"Password changed, all sessions invalidated"
//	@Failure		400	{object}	devicesdk.ErrorResponse	"validation_error"
//	@Failure		401	{object}	devicesdk.ErrorResponse	"invalid_credentials, token_invalid"
//	@Router			/v1/account/password [post].
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromCtx(ctx)
	if accountID == "" {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	var req devicesdk.ChangePasswordRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		devicesdk.ErrValidation.WriteError(w)
		return
	}

	if err := h.AccountService.ChangePassword(ctx, accountID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete Account
//	@Description	Permanently removes the authenticated account after confirming the password.
//	@Description	Session tokens are removed with it.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Success		204	"Account deleted"
//	@Failure		401	{object}	devicesdk.ErrorResponse	"invalid_credentials, token_invalid"
//	@Router			/v1/account [delete].
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromCtx(ctx)
	if accountID == "" {
		devicesdk.ErrTokenInvalid.WriteError(w)
		return
	}

	var req devicesdk.DeleteAccountRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		devicesdk.ErrValidation.WriteError(w)
		return
	}

	if err := h.AccountService.Delete(ctx, accountID, req.Password); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

func toAccountInfo(a domain.Account) devicesdk.AccountInfo {
	return devicesdk.AccountInfo{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		IsActive: a.IsActive,
	}
}
