package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/mumblefish/noteflow/tone"
)

// Service endpoints.
const (
	polishPath  = "/api/v1/polish"
	profilePath = "/api/v1/auth/me"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Credentials is the auth material for one request. A non-empty BYOKKey
// takes strict priority: the key goes in a dedicated header and no bearer
// token is attached.
type Credentials struct {
	AuthToken string
	BYOKKey   string
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	// BaseURL is the polish service root, e.g. "https://mumble.fish".
	BaseURL string

	// HTTPClient is the transport for BYOK-mode requests. Bearer-mode
	// requests wrap its transport with an oauth2 token source.
	HTTPClient *http.Client
}

// Client speaks the polish service wire contract.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

type polishRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

type polishData struct {
	Polished string `json:"polished"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    *polishData `json:"data"`
	Error   string      `json:"error"`
}

// Polish sends text for rewriting in the given tone and returns the
// polished text. An empty polished payload is a valid result, not an
// error. The caller is responsible for entitlement checks; Polish
// attaches whichever credential mode the material allows.
func (c *Client) Polish(ctx context.Context, text string, style tone.Style, creds Credentials) (string, error) {
	body, err := json.Marshal(polishRequest{Text: text, Tone: style.WireValue()})
	if err != nil {
		return "", fmt.Errorf("marshal polish request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+polishPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create polish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.client
	if creds.BYOKKey != "" {
		// BYOK mode: the worker uses the key directly; no bearer token.
		req.Header.Set("X-OpenAI-Key", creds.BYOKKey)
	} else if creds.AuthToken != "" {
		httpClient = c.bearerClient(ctx, creds.AuthToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("polish request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return "", &APIError{StatusCode: 401, Message: MsgSessionExpired, Endpoint: polishPath}
	case http.StatusTooManyRequests:
		return "", &APIError{StatusCode: 429, Message: MsgRateLimited, Endpoint: polishPath}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read polish response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API error (%d): %s", resp.StatusCode, string(raw)),
			Endpoint:   polishPath,
		}
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode polish response: %w", err)
	}

	// Transport success with an in-payload error is still a failure.
	if decoded.Error != "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: decoded.Error, Endpoint: polishPath}
	}

	if decoded.Data == nil {
		return "", nil
	}
	return decoded.Data.Polished, nil
}

// Profile is the service's view of the signed-in user.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type profileResponse struct {
	Success bool     `json:"success"`
	Data    *Profile `json:"data"`
}

// FetchProfile loads the signed-in user's profile. Used only to refresh
// the cached email; callers treat failures as non-fatal.
func (c *Client) FetchProfile(ctx context.Context, token string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("create profile request: %w", err)
	}

	resp, err := c.bearerClient(ctx, token).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, &APIError{StatusCode: resp.StatusCode, Message: "profile fetch failed", Endpoint: profilePath}
	}

	var decoded profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Profile{}, fmt.Errorf("decode profile response: %w", err)
	}
	if decoded.Data == nil {
		return Profile{}, fmt.Errorf("profile response missing data")
	}
	return *decoded.Data, nil
}

// bearerClient wraps the base transport with a static bearer token
// source, the signed-in credential mode.
func (c *Client) bearerClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	bearer := oauth2.NewClient(ctx, ts)
	bearer.Timeout = c.client.Timeout
	return bearer
}
