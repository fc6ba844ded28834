package http

import (
	"net/http"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/service"
	"github.com/ggjcommunity/auth/pkg/authsdk"
)

// maxLifetimeMinutes bounds the request before conversion; the service
// applies the real cap.
const maxLifetimeMinutes = 1 << 20

type ImpersonateHandler struct {
	ImpersonationService *service.ImpersonationService
}

// ServeHTTP mints a token for another user on behalf of an admin.
//
//	@Summary		Impersonate user
//	@Description	Admin only. Target by userId or email. Lifetime defaults to 60 minutes and is capped at 120.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ImpersonateRequest	true	"Target"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Bad target"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Not an admin, or already impersonating"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Target not found"
//	@Router			/v1/auth/impersonate [post].
func (h *ImpersonateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req authsdk.ImpersonateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LifetimeMinutes < 0 {
		authsdk.ErrInvalidRequest.WithDescription("lifetimeMinutes must not be negative").WriteError(w)
		return
	}

	sess, err := h.ImpersonationService.Impersonate(r.Context(), claims,
		service.Target{UserID: req.UserID, Email: req.Email},
		time.Duration(min(req.LifetimeMinutes, maxLifetimeMinutes))*time.Minute,
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSession(w, http.StatusOK, sess)
}
