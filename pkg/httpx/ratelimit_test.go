package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ggjcommunity/auth/pkg/httpx"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"from RemoteAddr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"prefers X-Forwarded-For", "192.168.1.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"}, "203.0.113.1"},
		{"uses X-Real-IP", "192.168.1.1:12345", map[string]string{"X-Real-IP": " 203.0.113.2 "}, "203.0.113.2"},
		{"RemoteAddr without port", "10.0.0.1", nil, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extract := httpx.JSONFieldKeyExtractor("email")

	t.Run("reads field and restores body", func(t *testing.T) {
		body := `{"email":" Alice@Example.com ","password":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "alice@example.com", extract(req))

		var dst struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))
		require.Equal(t, "x", dst.Password)
	})

	t.Run("empty for non JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("email=bob"))
		require.Empty(t, extract(req))
	})

	t.Run("empty for non string field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":42}`))
		require.Empty(t, extract(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extract := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.JSONFieldKeyExtractor("email"),
	)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1:a@b.c", extract(req))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", extract(req))
}

func TestUserIDKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, httpx.UserIDKeyExtractor(req))

	ctx := httpx.ContextWithClaims(req.Context(), jwtx.Claims{jwtx.ClaimUserID: "u1"})
	require.Equal(t, "u1", httpx.UserIDKeyExtractor(req.WithContext(ctx)))
}

func TestRateLimiterAllow(t *testing.T) {
	clock := newClock()
	rl := httpx.NewRateLimiter(httpx.RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}, clock.Now)

	for i := range 5 {
		ok, _ := rl.Allow("k")
		require.True(t, ok, "request %d should pass", i+1)
	}

	ok, delay := rl.Allow("k")
	require.False(t, ok)
	require.InDelta(t, 12*time.Second, delay, float64(time.Millisecond))

	ok, _ = rl.Allow("other")
	require.True(t, ok, "keys are independent")

	clock.Advance(13 * time.Second)
	ok, _ = rl.Allow("k")
	require.True(t, ok, "one token refilled")

	ok, _ = rl.Allow("k")
	require.False(t, ok)
}

func TestRateLimiterSweepsIdleKeys(t *testing.T) {
	clock := newClock()
	rl := httpx.NewRateLimiter(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Second}, clock.Now)

	rl.Allow("a")
	rl.Allow("b")
	require.Equal(t, 2, rl.Len())

	clock.Advance(11 * time.Minute)
	rl.Allow("c")
	require.Equal(t, 1, rl.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	clock := newClock()
	rl := httpx.NewRateLimiter(httpx.RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	}, clock.Now)

	handler := rl.Middleware(httpx.IPKeyExtractor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := range 3 {
		require.Equal(t, http.StatusOK, call("192.168.1.1:1").Code, "request %d should succeed", i+1)
	}

	rec := call("192.168.1.1:1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "20", rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	require.Equal(t, http.StatusOK, call("192.168.1.2:1").Code, "different IP has its own bucket")
}

func TestRateLimitMiddleware_EmptyKeyPasses(t *testing.T) {
	rl := httpx.NewRateLimiter(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1}, nil)
	handler := rl.Middleware(httpx.UserIDKeyExtractor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	require.Zero(t, rl.Len())
}
