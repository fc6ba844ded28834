package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/service"
	"github.com/ggjcommunity/auth/pkg/authsdk"
	"github.com/ggjcommunity/auth/pkg/httpx"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

// writeServiceError maps service errors onto the API error catalogue.
// Anything unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		authsdk.ErrInvalidRequest.WithDescription(ve.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrNestedImpersonation):
		authsdk.ErrForbidden.WithDescription("cannot impersonate while impersonating").WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		authsdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrNotFound.WithDescription("user not found").WriteError(w)
	case errors.Is(err, service.ErrInvalidCode):
		authsdk.ErrInvalidCode.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// decodeBody decodes the JSON body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return false
	}
	return true
}

// claimsOrUnauthorized fetches the claims placed by the authn middleware.
func claimsOrUnauthorized(w http.ResponseWriter, r *http.Request) (jwtx.Claims, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok || claims.Subject() == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return nil, false
	}
	return claims, true
}

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		CreatedAt:   u.CreatedAt,
	}
}

func toSessionResponse(s domain.Session) authsdk.SessionResponse {
	return authsdk.SessionResponse{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.ExpiresIn / time.Second),
		User:         toUserResponse(s.User),
		Impersonated: s.Impersonated,
		ActorID:      s.ActorID,
	}
}

func writeSession(w http.ResponseWriter, code int, s domain.Session) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, code, toSessionResponse(s))
}
