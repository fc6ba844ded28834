package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/metrics"
	"github.com/ggjcommunity/auth/internal/auth/service"
	"github.com/ggjcommunity/auth/internal/auth/store"
	"github.com/ggjcommunity/auth/pkg/httpx"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"

	_ "github.com/ggjcommunity/auth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles applied per route class.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultLimits uses the httpx profiles.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store store.Store

	// Limits may be changed before ApplyRoutes.
	Limits Limits

	AuthService          *service.AuthService
	ImpersonationService *service.ImpersonationService
	ExchangeService      *service.ExchangeService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     m.Verifier(verifier),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		metrics:      m,
		Limits:       DefaultLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSession()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			GGJ Community Authentication API
//	@version		0.1.0
//	@description	Email and password accounts with HS256 access tokens for the community platform.
//	@description
//	@description				Tokens carry userId, email, displayName and role claims and can be checked with the verify endpoint.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with request metrics outermost.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	mws = append([]httpx.Middleware{r.metrics.Middleware(pattern)}, mws...)
	r.Mux.Handle(pattern, httpx.Chain(h, mws...))
}

func (r *Router) registerAuth() {
	// Credential endpoints are limited by IP plus the email being tried,
	// and by IP alone.
	r.handle("POST /v1/auth/signup",
		&SignupHandler{AuthService: r.AuthService},
		httpx.RateLimitByIP(r.Limits.Strict),
	)
	r.handle("POST /v1/auth/login",
		&LoginHandler{AuthService: r.AuthService},
		httpx.RateLimitByIP(r.Limits.Moderate),
		httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
	)
	r.handle("POST /v1/auth/exchange",
		&ExchangeHandler{ExchangeService: r.ExchangeService},
		httpx.RateLimitByIP(r.Limits.Strict),
	)
	r.handle("POST /v1/auth/verify",
		&VerifyHandler{AuthService: r.AuthService},
		httpx.RateLimitByIP(r.Limits.Lenient),
	)
}

func (r *Router) registerSession() {
	r.handle("GET /v1/auth/me",
		&MeHandler{AuthService: r.AuthService},
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(r.Limits.Lenient),
	)
	r.handle("POST /v1/auth/password",
		&PasswordHandler{AuthService: r.AuthService},
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(r.Limits.Strict),
	)
	r.handle("POST /v1/auth/codes",
		&CodesHandler{ExchangeService: r.ExchangeService},
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(r.Limits.Moderate),
	)
}

func (r *Router) registerAdmin() {
	r.handle("POST /v1/auth/impersonate",
		&ImpersonateHandler{ImpersonationService: r.ImpersonationService},
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(domain.RoleAdmin.String()),
		httpx.RateLimitByUser(r.Limits.Moderate),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
