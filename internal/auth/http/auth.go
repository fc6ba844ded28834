package http

import (
	"errors"
	"net/http"

	"github.com/ggjcommunity/auth/internal/auth/service"
	"github.com/ggjcommunity/auth/pkg/authsdk"
	"github.com/ggjcommunity/auth/pkg/httpx"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

type SignupHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP creates a member account.
//
//	@Summary		Sign up
//	@Description	Creates a member account and returns a session. Email is case-insensitive; display name defaults to the local part of the email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest	true	"New account"
//	@Success		201		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid email, password or display name"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Email already registered"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := h.AuthService.Signup(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSession(w, http.StatusCreated, sess)
}

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP signs a user in with email and password.
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid email or password"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSession(w, http.StatusOK, res.Session)
}

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP returns the authenticated user.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	user, err := h.AuthService.Me(r.Context(), claims.Subject())
	if errors.Is(err, service.ErrUserNotFound) {
		// The account is gone but the token is still within its lifetime.
		authsdk.ErrInvalidToken.WithDescription("user no longer exists").WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

type PasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP changes the authenticated user's password.
//
//	@Summary		Change password
//	@Description	Replaces the password after checking the current one. Not available to impersonated sessions.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"New password rejected"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Wrong current password or invalid token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Impersonated session"
//	@Router			/v1/auth/password [post].
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}
	if claims.Bool(jwtx.ClaimImpersonated) {
		authsdk.ErrForbidden.WithDescription("impersonated sessions cannot change passwords").WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), claims.Subject(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Debug("password updated", "user_id", claims.Subject())
	w.WriteHeader(http.StatusNoContent)
}

type VerifyHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP reports whether a token is valid.
//
//	@Summary		Verify token
//	@Description	Returns {valid:true, claims} or {valid:false, error}. An invalid token is still a 200 response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyRequest	true	"Token to check"
//	@Success		200		{object}	authsdk.VerifyResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Router			/v1/auth/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res := h.AuthService.Verify(req.Token)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		Valid:  res.Valid,
		Claims: res.Claims,
		Error:  res.Error,
	})
}
