// Package hub provides a client for the JupyterHub REST API, covering the
// two calls the OAuth callback needs: token exchange and user lookup.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hubward/quotaview/domain/auth"
	"github.com/hubward/quotaview/ports"
)

// Client talks to the hub's internal API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	clientID   string
	apiToken   string
}

// ClientConfig configures the hub client.
type ClientConfig struct {
	// APIURL is the hub's internal API base, e.g. http://jupyterhub:8081/hub/api.
	APIURL string
	// ClientID is the OAuth client id, conventionally "service-<name>".
	ClientID string
	// APIToken is the service's hub API token, doubling as the client secret.
	APIToken string
	Timeout  time.Duration
}

// NewClient creates a new hub API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     strings.TrimSuffix(cfg.APIURL, "/"),
		clientID:   cfg.ClientID,
		apiToken:   cfg.APIToken,
	}
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.apiToken},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token request failed with %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return tokenResp.AccessToken, nil
}

// CurrentUser returns the user owning the access token.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (auth.HubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/user", nil)
	if err != nil {
		return auth.HubUser{}, fmt.Errorf("create user request: %w", err)
	}
	// The hub expects its own token scheme, not Bearer.
	req.Header.Set("Authorization", "token "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.HubUser{}, fmt.Errorf("user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return auth.HubUser{}, fmt.Errorf("user request failed with %d: %s", resp.StatusCode, string(body))
	}

	var user struct {
		Name  string `json:"name"`
		Admin bool   `json:"admin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return auth.HubUser{}, fmt.Errorf("parse user response: %w", err)
	}
	if user.Name == "" {
		return auth.HubUser{}, fmt.Errorf("user response missing name")
	}

	return auth.HubUser{Name: user.Name, Admin: user.Admin}, nil
}

// Ensure interface compliance.
var _ ports.HubAuthenticator = (*Client)(nil)
