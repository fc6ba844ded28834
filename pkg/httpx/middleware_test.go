package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ggjcommunity/auth/pkg/httpx"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTokens(t *testing.T) *jwtx.Service {
	t.Helper()
	svc, err := jwtx.NewService("middleware-secret")
	require.NoError(t, err)
	return svc
}

func echoClaims() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"user":   httpx.UserIDFromContext(r.Context()),
			"claims": claims,
		})
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"), mw("c"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearerabc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := httpx.BearerToken(req)
		require.Equal(t, tt.ok, ok, tt.header)
		require.Equal(t, tt.want, got, tt.header)
	}
}

func TestAuthnMiddleware(t *testing.T) {
	tokens := newTokens(t)
	h := httpx.AuthnMiddleware(tokens)(echoClaims())

	valid, err := tokens.Issue(jwtx.Claims{jwtx.ClaimUserID: "u1", jwtx.ClaimRole: "member"})
	require.NoError(t, err)

	other, err := jwtx.NewService("another-secret")
	require.NoError(t, err)
	forged, err := other.Issue(jwtx.Claims{jwtx.ClaimUserID: "u1"})
	require.NoError(t, err)

	expiredSvc, err := jwtx.NewService("middleware-secret",
		jwtx.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }))
	require.NoError(t, err)
	expired, err := expiredSvc.IssueWithLifetime(jwtx.Claims{jwtx.ClaimUserID: "u1"}, 5*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantDesc string
	}{
		{"missing header", "", http.StatusUnauthorized, "Missing bearer token"},
		{"malformed", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid token format"},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized, "Invalid signature"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				body := decodeError(t, rec)
				require.Equal(t, "invalid_token", body.Error)
				require.Equal(t, tt.wantDesc, body.ErrorDescription)
				require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
				return
			}

			var got struct {
				User   string         `json:"user"`
				Claims map[string]any `json:"claims"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Equal(t, "u1", got.User)
			require.Equal(t, "member", got.Claims["role"])
			require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens(t)
	h := httpx.Chain(echoClaims(), httpx.AuthnMiddleware(tokens), httpx.RequireRole("admin"))

	call := func(role string) *httptest.ResponseRecorder {
		claims := jwtx.Claims{jwtx.ClaimUserID: "u1"}
		if role != "" {
			claims[jwtx.ClaimRole] = role
		}
		token, err := tokens.Issue(claims)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/impersonate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, call("admin").Code)

	for _, role := range []string{"member", "", "Admin"} {
		rec := call(role)
		require.Equal(t, http.StatusForbidden, rec.Code, role)
		require.Equal(t, "forbidden", decodeError(t, rec).Error)
	}
}

func TestRequireRole_WithoutAuthn(t *testing.T) {
	h := httpx.RequireRole("admin")(echoClaims())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", `{"email":"a@b.c"}`, false},
		{"trailing whitespace", "{\"email\":\"a@b.c\"}\n", false},
		{"empty", ``, true},
		{"unknown field", `{"email":"a@b.c","admin":true}`, true},
		{"two objects", `{"email":"a"}{"email":"b"}`, true},
		{"not json", `email=a`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.in))
			var dst body
			err := httpx.DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "a@b.c", dst.Email)
		})
	}
}
