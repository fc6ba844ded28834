package authsdk

import "time"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SignupRequest is the body of POST /v1/auth/signup.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ImpersonateRequest is the body of POST /v1/auth/impersonate. Exactly one of
// UserID and Email identifies the target.
type ImpersonateRequest struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`

	// LifetimeMinutes defaults to the server's impersonation lifetime and is
	// capped by it.
	LifetimeMinutes int `json:"lifetimeMinutes,omitempty"`
}

// ExchangeRequest is the body of POST /v1/auth/exchange.
type ExchangeRequest struct {
	Code string `json:"code"`
}

// VerifyRequest is the body of POST /v1/auth/verify.
type VerifyRequest struct {
	Token string `json:"token"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SessionResponse is returned by every endpoint that issues a token.
type SessionResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int          `json:"expiresIn"`
	User        UserResponse `json:"user"`

	// Impersonated is set on tokens minted by an admin for another user.
	Impersonated bool   `json:"impersonated,omitempty"`
	ActorID      string `json:"actorId,omitempty"`
}

// ExchangeCodeResponse is returned by POST /v1/auth/codes.
type ExchangeCodeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expiresIn"`
}

// VerifyResponse mirrors the tagged verification result: either Valid with
// Claims, or not valid with an Error reason.
type VerifyResponse struct {
	Valid  bool           `json:"valid"`
	Claims map[string]any `json:"claims,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
