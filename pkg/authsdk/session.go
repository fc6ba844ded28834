package authsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrSessionExpired is returned before sending a request with a token the
// session already knows has expired.
var ErrSessionExpired = errors.New("authsdk: session expired, sign in again")

// Session holds one access token and the user it was issued for.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	expiresAt    time.Time
	user         UserResponse
	impersonated bool
}

func newSession(client *SDKClient, resp *SessionResponse) *Session {
	s := &Session{
		client:       client,
		accessToken:  resp.AccessToken,
		user:         resp.User,
		impersonated: resp.Impersonated,
	}
	if resp.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return s
}

// AccessToken returns the bearer token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// User returns the user the session was issued for, as reported at sign in.
func (s *Session) User() UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Impersonated reports whether an admin minted this session for someone else.
func (s *Session) Impersonated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.impersonated
}

// Expired reports whether the token's lifetime has run out. Sessions created
// without a lifetime never report expiry locally.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

func (s *Session) token() (string, error) {
	if s.Expired() {
		return "", ErrSessionExpired
	}
	return s.AccessToken(), nil
}

// Me fetches the current user and refreshes the cached copy.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	me, err := s.client.Me(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = *me
	s.mu.Unlock()
	return me, nil
}

// ChangePassword replaces the user's password.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	token, err := s.token()
	if err != nil {
		return err
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/auth/password",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, token)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// MintExchangeCode issues a one-time code another client can redeem for a
// session of this user.
func (s *Session) MintExchangeCode(ctx context.Context) (*ExchangeCodeResponse, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/auth/codes", nil, token)
	if err != nil {
		return nil, err
	}

	var out ExchangeCodeResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Impersonate returns a session acting as another user. Admin only.
func (s *Session) Impersonate(ctx context.Context, req ImpersonateRequest) (*Session, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/auth/impersonate", req, token)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(s.client, &out), nil
}
