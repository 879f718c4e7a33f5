package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateLimit_RequestsWithinLimit_Pass(t *testing.T) {
	handler := RateLimit(10, 10, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/verify/abc/tok", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "request %d should pass", i+1)
	}
}

func TestRateLimit_ExceedingLimit_Returns429(t *testing.T) {
	handler := RateLimit(1, 3, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var rateLimited bool
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/verify/abc/tok", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code == http.StatusTooManyRequests {
			rateLimited = true
			assert.Contains(t, rr.Body.String(), "RATE_LIMITED")
			break
		}
	}

	assert.True(t, rateLimited, "should have been rate limited after exceeding burst")
}

func TestRateLimit_DifferentIPs_IndependentLimits(t *testing.T) {
	handler := RateLimit(1, 2, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/verify/abc/tok", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/verify/abc/tok", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestVisitorStore_CleanupEvictsStale(t *testing.T) {
	s := &visitorStore{
		visitors: make(map[string]*visitor),
		rps:      1,
		burst:    1,
		ttl:      time.Minute,
	}
	base := time.Now()
	s.nowFunc = func() time.Time { return base }

	s.getVisitor("10.0.0.1")
	s.getVisitor("10.0.0.2")
	assert.Equal(t, 2, s.len())

	// Advance past the TTL and trigger cleanup.
	s.nowFunc = func() time.Time { return base.Add(2 * time.Minute) }
	s.cleanup()
	assert.Equal(t, 0, s.len())
}

func TestClientIP_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.RemoteAddr = "10.0.0.99:1234"
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestClientIP_RemoteAddrFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5678"
	assert.Equal(t, "198.51.100.4", clientIP(req))
}
