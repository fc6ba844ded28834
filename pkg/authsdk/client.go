package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the ggj-auth service. It covers the public endpoints and
// creates Sessions for the authenticated ones.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Signup creates a member account and returns a session for it.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	return c.sessionCall(ctx, "/v1/auth/signup", req, http.StatusCreated)
}

// Login exchanges an email and password for a session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.sessionCall(ctx, "/v1/auth/login", LoginRequest{Email: email, Password: password}, http.StatusOK)
}

// Exchange redeems a one-time code for a session.
func (c *SDKClient) Exchange(ctx context.Context, code string) (*Session, error) {
	return c.sessionCall(ctx, "/v1/auth/exchange", ExchangeRequest{Code: code}, http.StatusOK)
}

// Verify asks the service whether token is valid. A rejected token is not a
// Go error; it comes back as a result with Valid false.
func (c *SDKClient) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/verify", VerifyRequest{Token: token}, "")
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user behind token.
func (c *SDKClient) Me(ctx context.Context, token string) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/auth/me", nil, token)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewSessionFromToken wraps an access token obtained elsewhere.
func (c *SDKClient) NewSessionFromToken(accessToken string, expiresIn int) *Session {
	return newSession(c, &SessionResponse{AccessToken: accessToken, ExpiresIn: expiresIn})
}

func (c *SDKClient) sessionCall(ctx context.Context, path string, body any, wantStatus int) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body, "")
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, wantStatus); err != nil {
		return nil, err
	}
	return newSession(c, &out), nil
}
