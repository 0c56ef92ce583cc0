package devicesdk

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tether/pkg/devicebind"
)

// SDKClient talks to the device authority service. It pairs the HTTP client
// with a device binding store so every credential-bearing request carries a
// fresh device hash derived from this machine's binding.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Binding produces the device hashes sent with register, login and
	// logout-others requests.
	Binding *devicebind.Store
}

// NewSDKClient creates a client for the given service URL and device
// binding store.
func NewSDKClient(baseURL string, binding *devicebind.Store) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Binding: binding,
	}
}

// deviceHash validates the local binding and derives a fresh hash for the
// given operation context.
func (c *SDKClient) deviceHash(operation string) (devicebind.DeviceHash, error) {
	if _, err := c.Binding.InitializeIfNeeded(); err != nil {
		return devicebind.DeviceHash{}, err
	}
	return c.Binding.GenerateDeviceHash(operation)
}

// Register creates a new account bound to this device and returns an
// authenticated session.
func (c *SDKClient) Register(ctx context.Context, username, email, password string) (*Session, error) {
	hash, err := c.deviceHash("register")
	if err != nil {
		return nil, err
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", RegisterRequest{
		Username:            username,
		Email:               email,
		Password:            password,
		DeviceHash:          hash.Value,
		DeviceHashTimestamp: hash.Timestamp,
	}, "")
	if err != nil {
		return nil, err
	}

	var grant SessionGrantResponse
	if err := decodeJSON(resp, &grant, http.StatusCreated); err != nil {
		return nil, err
	}
	return newSession(c, grant), nil
}

// Login authenticates from this device. Fails with
// ErrAccountActiveOnOtherDevice (by code) while another device holds the
// account's live session; see Session.LogoutOtherDevices for the recovery
// path.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	hash, err := c.deviceHash("login")
	if err != nil {
		return nil, err
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{
		Username:            username,
		Password:            password,
		DeviceHash:          hash.Value,
		DeviceHashTimestamp: hash.Timestamp,
	}, "")
	if err != nil {
		return nil, err
	}

	var grant SessionGrantResponse
	if err := decodeJSON(resp, &grant, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, grant), nil
}

// Reactivate restores a deactivated account. No session is issued; call
// Login afterwards.
func (c *SDKClient) Reactivate(ctx context.Context, username, password string) (AccountInfo, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/account/reactivate", ReactivateRequest{
		Username: username,
		Password: password,
	}, "")
	if err != nil {
		return AccountInfo{}, err
	}

	var account AccountInfo
	if err := decodeJSON(resp, &account, http.StatusOK); err != nil {
		return AccountInfo{}, err
	}
	return account, nil
}

// NewSessionFromToken resumes a session from a previously issued token,
// e.g. one persisted across client restarts.
func (c *SDKClient) NewSessionFromToken(token string, expiresAt time.Time) *Session {
	return &Session{
		client:    c,
		token:     token,
		expiresAt: expiresAt,
	}
}

// GetLiveness checks the service liveness probe.
func (c *SDKClient) GetLiveness(ctx context.Context) (HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/livez", nil, "")
	if err != nil {
		return HealthResponse{}, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return HealthResponse{}, err
	}
	return health, nil
}

// GetReadiness checks the service readiness probe, including dependency
// checks.
func (c *SDKClient) GetReadiness(ctx context.Context) (HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, "")
	if err != nil {
		return HealthResponse{}, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return HealthResponse{}, err
	}
	return health, nil
}
