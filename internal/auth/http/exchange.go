package http

import (
	"net/http"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/service"
	"github.com/ggjcommunity/auth/pkg/authsdk"
	"github.com/ggjcommunity/auth/pkg/httpx"
)

type CodesHandler struct {
	ExchangeService *service.ExchangeService
}

// ServeHTTP mints a one-time exchange code for the caller.
//
//	@Summary		Mint exchange code
//	@Description	Returns a single-use code that POST /v1/auth/exchange trades for a fresh session.
//	@Tags			Exchange
//	@Security		BearerAuth
//	@Produce		json
//	@Success		201	{object}	authsdk.ExchangeCodeResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Impersonated session"
//	@Router			/v1/auth/codes [post].
func (h *CodesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	code, ttl, err := h.ExchangeService.Mint(r.Context(), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.ExchangeCodeResponse{
		Code:      code,
		ExpiresIn: int(ttl / time.Second),
	})
}

type ExchangeHandler struct {
	ExchangeService *service.ExchangeService
}

// ServeHTTP redeems an exchange code.
//
//	@Summary		Redeem exchange code
//	@Tags			Exchange
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ExchangeRequest	true	"Code"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid, expired or used code"
//	@Router			/v1/auth/exchange [post].
func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ExchangeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := h.ExchangeService.Redeem(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSession(w, http.StatusOK, sess)
}
