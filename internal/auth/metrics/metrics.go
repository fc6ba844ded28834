// Package metrics holds the Prometheus collectors of the auth service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ggj_auth"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	auth          *prometheus.CounterVec
	tokensIssued  *prometheus.CounterVec
	verifications *prometheus.CounterVec
	bestEffort    *prometheus.CounterVec
	codesDeleted  prometheus.Counter
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Signup, login, exchange and impersonation attempts by outcome.",
		}, []string{"op", "result"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued by kind.",
		}, []string{"kind"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Token verifications by result.",
		}, []string{"result"}),
		bestEffort: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "best_effort_failures_total",
			Help:      "Best-effort side effects that failed or were skipped.",
		}, []string{"op", "outcome"}),
		codesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_codes_deleted_total",
			Help:      "Expired or used exchange codes removed by housekeeping.",
		}),
	}

	reg.MustRegister(
		m.requests, m.duration, m.auth, m.tokensIssued,
		m.verifications, m.bestEffort, m.codesDeleted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// AuthAttempt records the outcome of an authentication operation.
func (m *Metrics) AuthAttempt(op, result string) {
	if m == nil {
		return
	}
	m.auth.WithLabelValues(op, result).Inc()
}

// TokenIssued counts an issued access token.
func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(kind).Inc()
}

// TokenVerified counts a verification by its reason; "valid" on success.
func (m *Metrics) TokenVerified(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

// Verifier wraps v so every verification it performs is counted like
// TokenVerified. A nil Metrics returns v unchanged.
func (m *Metrics) Verifier(v jwtx.Verifier) jwtx.Verifier {
	if m == nil {
		return v
	}
	return countingVerifier{next: v, m: m}
}

type countingVerifier struct {
	next jwtx.Verifier
	m    *Metrics
}

func (c countingVerifier) Verify(token string) (jwtx.Claims, error) {
	claims, err := c.next.Verify(token)
	if err != nil {
		c.m.TokenVerified(jwtx.Reason(err))
		return nil, err
	}
	c.m.TokenVerified("valid")
	return claims, nil
}

// BestEffort counts a side effect that did not happen.
func (m *Metrics) BestEffort(op, outcome string) {
	if m == nil {
		return
	}
	m.bestEffort.WithLabelValues(op, outcome).Inc()
}

// CodesDeleted counts exchange codes removed by housekeeping.
func (m *Metrics) CodesDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.codesDeleted.Add(float64(n))
}

// Middleware records every request under route.
func (m *Metrics) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			m.ObserveRequest(route, rw.status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
