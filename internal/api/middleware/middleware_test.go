package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/pkg/logger"
)

func callerHandler(got *access.Caller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = access.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAccess(t *testing.T) {
	gate := access.NewGate("s3cret")

	tests := []struct {
		name    string
		headers map[string]string
		staff   bool
	}{
		{name: "no secret", staff: false},
		{name: "admin header", headers: map[string]string{HeaderAdminSecret: "s3cret"}, staff: true},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer s3cret"}, staff: true},
		{name: "lowercase bearer", headers: map[string]string{"Authorization": "bearer s3cret"}, staff: true},
		{name: "wrong secret", headers: map[string]string{HeaderAdminSecret: "guess"}, staff: false},
		{name: "basic auth ignored", headers: map[string]string{"Authorization": "Basic s3cret"}, staff: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got access.Caller
			req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			Access(gate)(callerHandler(&got)).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.staff, got.IsStaff())
		})
	}
}

func TestAccess_EmptySecretNeverAuthorizes(t *testing.T) {
	var got access.Caller
	req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
	req.Header.Set(HeaderAdminSecret, "")
	req.Header.Set("Authorization", "Bearer ")

	Access(access.NewGate(""))(callerHandler(&got)).ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, got.IsStaff())
}

type observedRequest struct {
	method string
	route  string
	status int
}

type fakeHTTPMetrics struct {
	observed []observedRequest
}

func (m *fakeHTTPMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	m.observed = append(m.observed, observedRequest{method: method, route: route, status: status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	metrics := &fakeHTTPMetrics{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(metrics))
	r.HandleFunc("/api/v1/reservations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reservations/abc", nil))

	require.Len(t, metrics.observed, 1)
	assert.Equal(t, observedRequest{method: http.MethodGet, route: "/api/v1/reservations/{id}", status: http.StatusNotFound}, metrics.observed[0])
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if c.counts == nil {
		c.counts = make(map[string]int64)
	}
	c.counts[key]++
	return c.counts[key], nil
}

type fakeRateMetrics struct {
	routes []string
}

func (m *fakeRateMetrics) IncRateLimited(route string) {
	m.routes = append(m.routes, route)
}

func newLimitedRouter(limiter *RateLimiter, gate *access.Gate) *mux.Router {
	r := mux.NewRouter()
	r.Use(Access(gate))
	r.Use(limiter.Middleware())
	r.HandleFunc("/reservations", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet, http.MethodPost)
	return r
}

func doRequest(r http.Handler, method, ip string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/reservations", nil)
	req.RemoteAddr = ip + ":51000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	metrics := &fakeRateMetrics{}
	limiter := NewRateLimiter(&fakeCounter{}, 2, time.Minute, nil, metrics, logger.NewNop())
	limiter.now = func() time.Time { return time.Date(2026, time.October, 19, 12, 0, 15, 0, time.UTC) }
	r := newLimitedRouter(limiter, access.NewGate("s3cret"))

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "10.0.0.1", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "10.0.0.1", nil).Code)

	rec := doRequest(r, http.MethodPost, "10.0.0.1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"POST /reservations"}, metrics.routes)

	// другой IP и другой метод считаются отдельно
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "10.0.0.2", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "10.0.0.1", nil).Code)
}

func TestRateLimiter_StaffBypass(t *testing.T) {
	counter := &fakeCounter{}
	limiter := NewRateLimiter(counter, 1, time.Minute, nil, nil, logger.NewNop())
	r := newLimitedRouter(limiter, access.NewGate("s3cret"))

	staff := map[string]string{HeaderAdminSecret: "s3cret"}
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "10.0.0.1", staff).Code)
	}
	assert.Empty(t, counter.counts)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	limiter := NewRateLimiter(&fakeCounter{err: errors.New("connection refused")}, 1, time.Minute, nil, nil, logger.NewNop())
	r := newLimitedRouter(limiter, access.NewGate(""))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "10.0.0.1", nil).Code)
	}
}

func TestRateLimiter_IgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	limiter := NewRateLimiter(&fakeCounter{}, 2, time.Minute, nil, nil, logger.NewNop())
	r := newLimitedRouter(limiter, access.NewGate(""))

	limited := 0
	for i := 0; i < 20; i++ {
		headers := map[string]string{
			"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i),
			"X-Real-IP":       fmt.Sprintf("203.0.113.%d", i),
		}
		if doRequest(r, http.MethodPost, "10.0.0.1", headers).Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 18, limited)
}

func TestRateLimiter_TrustedProxyForwardsClientIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	limiter := NewRateLimiter(&fakeCounter{}, 1, time.Minute, proxies, nil, logger.NewNop())
	r := newLimitedRouter(limiter, access.NewGate(""))

	first := map[string]string{"X-Forwarded-For": "198.51.100.1"}
	second := map[string]string{"X-Forwarded-For": "198.51.100.2"}

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "10.0.0.1", first).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodPost, "10.0.0.1", first).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "10.0.0.1", second).Code)
}

func TestClientIP(t *testing.T) {
	untrusted := NewRateLimiter(&fakeCounter{}, 1, time.Minute, nil, nil, logger.NewNop())
	trusted := NewRateLimiter(&fakeCounter{}, 1, time.Minute,
		[]netip.Prefix{netip.MustParsePrefix("192.168.1.0/24"), netip.MustParsePrefix("10.0.0.0/8")}, nil, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:40000"
	assert.Equal(t, "192.168.1.5", trusted.clientIP(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", trusted.clientIP(req))
	assert.Equal(t, "192.168.1.5", untrusted.clientIP(req))

	// левые записи может подставить сам клиент, берется первая недоверенная справа
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", trusted.clientIP(req))
	assert.Equal(t, "192.168.1.5", untrusted.clientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.1")
	assert.Equal(t, "10.0.0.2", trusted.clientIP(req))
}
