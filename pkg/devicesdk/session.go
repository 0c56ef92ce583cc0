package devicesdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Session is an authenticated session with the device authority. There is
// no refresh flow: when the token expires the caller logs in again, which
// reasserts the device binding server-side.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	account   AccountInfo
}

func newSession(client *SDKClient, grant SessionGrantResponse) *Session {
	return &Session{
		client:    client,
		token:     grant.SessionToken,
		expiresAt: grant.ExpiresAt,
		account:   grant.Account,
	}
}

// Token returns the raw session token, e.g. for persisting across restarts.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Account returns the account this session was issued for. Empty when the
// session was resumed from a bare token; use Verify to repopulate it.
func (s *Session) Account() AccountInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// currentToken returns the token or ErrTokenInvalid when it is already
// known to be expired, saving a round trip.
func (s *Session) currentToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrTokenInvalid
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", ErrTokenInvalid
	}
	return s.token, nil
}

// Verify asks the server whether the session is still live.
func (s *Session) Verify(ctx context.Context) (VerifyResponse, error) {
	token, err := s.currentToken()
	if err != nil {
		return VerifyResponse{}, err
	}

	resp, err := s.client.doJSON(ctx, http.MethodGet, "/v1/auth/verify", nil, token)
	if err != nil {
		return VerifyResponse{}, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return VerifyResponse{}, err
	}

	s.mu.Lock()
	if s.account.ID == "" {
		s.account = AccountInfo{ID: out.AccountID, Username: out.Username, IsActive: true}
	}
	s.mu.Unlock()
	return out, nil
}

// Logout invalidates this session's token on the server. Idempotent.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/auth/logout", nil, token)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// LogoutOtherDevices evicts every session except this device's. This is
// the recovery path when a login was denied because the account is active
// elsewhere.
func (s *Session) LogoutOtherDevices(ctx context.Context) (int64, error) {
	token, err := s.currentToken()
	if err != nil {
		return 0, err
	}

	hash, err := s.client.deviceHash("logout-others")
	if err != nil {
		return 0, err
	}

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/auth/logout-others", LogoutOthersRequest{
		DeviceHash:          hash.Value,
		DeviceHashTimestamp: hash.Timestamp,
	}, token)
	if err != nil {
		return 0, err
	}

	var out InvalidatedResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Invalidated, nil
}

// ForceLogout clears the account's sessions on every device, this one
// included.
func (s *Session) ForceLogout(ctx context.Context) (int64, error) {
	token, err := s.currentToken()
	if err != nil {
		return 0, err
	}

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/auth/force-logout", nil, token)
	if err != nil {
		return 0, err
	}

	var out InvalidatedResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return out.Invalidated, nil
}

// ActiveSessions lists the account's live sessions with redacted device
// identifiers.
func (s *Session) ActiveSessions(ctx context.Context) ([]SessionInfo, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}

	resp, err := s.client.doJSON(ctx, http.MethodGet, "/v1/auth/sessions", nil, token)
	if err != nil {
		return nil, err
	}

	var out SessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// Deactivate disables the account and invalidates all sessions.
func (s *Session) Deactivate(ctx context.Context) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/account/deactivate", nil, token)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// ChangePassword swaps the account password. Every session, this one
// included, is invalidated; log in again afterwards.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/account/password", ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, token)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// DeleteAccount permanently removes the account after confirming the
// password.
func (s *Session) DeleteAccount(ctx context.Context, password string) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}

	resp, err := s.client.doJSON(ctx, http.MethodDelete, "/v1/account", DeleteAccountRequest{
		Password: password,
	}, token)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
