package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/cookiex"
)

// DefaultAPIBase is the path prefix the service mounts its API under.
const DefaultAPIBase = "/api/v1"

// SDKClient talks to the session service. It keeps the refresh cookie in
// its own cookie jar, the same way a browser would.
type SDKClient struct {
	BaseURL    string
	APIBase    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with an empty cookie jar. An empty apiBase
// means DefaultAPIBase.
func NewSDKClient(baseURL, apiBase string) *SDKClient {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	jar, _ := cookiejar.New(nil) // never fails with nil options

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIBase: "/" + strings.Trim(apiBase, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Login posts the credentials as a form. On success the refresh cookie is
// stored in the jar.
func (c *SDKClient) Login(ctx context.Context, email, password string, remember bool) (*TokenResponse, error) {
	form := url.Values{
		"username": {email},
		"password": {password},
	}
	if remember {
		form.Set("remember", "true")
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.api("/auth/login"),
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Refresh rotates the refresh cookie held in the jar and returns a new
// access token.
func (c *SDKClient) Refresh(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.api("/auth/refresh"), nil, csrfHeaders())
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout asks the service to clear the refresh cookie.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, c.api("/auth/logout"), nil, csrfHeaders())
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Register creates a new account with the default role.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("authsdk: encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.api("/auth/register"),
		bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return nil, err
	}

	var u UserResponse
	if err := decodeJSON(resp, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the principal behind accessToken.
func (c *SDKClient) Me(ctx context.Context, accessToken string) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.api("/me"), nil, bearer(accessToken))
	if err != nil {
		return nil, err
	}

	var u UserResponse
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// AdminSecret calls the admin-only endpoint.
func (c *SDKClient) AdminSecret(ctx context.Context, accessToken string) (*AdminSecretResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.api("/admin/secret"), nil, bearer(accessToken))
	if err != nil {
		return nil, err
	}

	var out AdminSecretResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health.
func (c *SDKClient) Health(ctx context.Context) (*AppHealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, err
	}

	var h AppHealthResponse
	if err := decodeJSON(resp, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var h HealthResponse
	if err := decodeJSON(resp, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}

	var h HealthResponse
	if err := decodeJSON(resp, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// Authenticate logs in and wraps the result in a Session that refreshes
// itself.
func (c *SDKClient) Authenticate(ctx context.Context, email, password string, remember bool) (*Session, error) {
	tok, err := c.Login(ctx, email, password, remember)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

func (c *SDKClient) api(path string) string {
	return c.APIBase + path
}

// csrfHeaders marks a request as scripted so it passes the cross-site
// cookie check.
func csrfHeaders() map[string]string {
	return map[string]string{cookiex.CSRFHeader: cookiex.CSRFHeaderValue}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
