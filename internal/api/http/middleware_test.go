package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"karhubty-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerClientBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cars", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000"))
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 20)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(limiterIdleTTL + time.Minute)
	rl.allow("b")

	assert.Equal(t, 1, rl.evictIdle())
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "b")
}

func TestRateLimiter_ClientIdentifier(t *testing.T) {
	rl := NewRateLimiter(10, 20)
	require.NoError(t, rl.TrustProxies([]string{"10.0.0.0/24", "192.168.1.9"}))

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"Direct Client", "41.200.1.1:4000", "", "41.200.1.1"},
		{"Header From Untrusted Peer Is Ignored", "41.200.1.1:4000", "1.2.3.4", "41.200.1.1"},
		{"Trusted Proxy", "10.0.0.1:4000", "41.200.1.1", "41.200.1.1"},
		{"Spoofed Hop Before Real Client", "10.0.0.1:4000", "1.2.3.4, 41.200.1.1", "41.200.1.1"},
		{"Chained Trusted Proxies", "10.0.0.1:4000", "41.200.1.1, 192.168.1.9", "41.200.1.1"},
		{"Trusted Proxy Without Header", "10.0.0.1:4000", "", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.expected, rl.clientIdentifier(req))
		})
	}
}

func TestRateLimiter_RotatingForwardedForDoesNotBypass(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cars", nil)
		req.RemoteAddr = "41.200.1.1:5000"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_TrustProxiesRejectsGarbage(t *testing.T) {
	rl := NewRateLimiter(10, 20)
	assert.Error(t, rl.TrustProxies([]string{"not-an-ip"}))
	assert.Error(t, rl.TrustProxies([]string{"10.0.0.0/99"}))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind   domain.ErrorKind
		status int
	}{
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindBadRequest, http.StatusBadRequest},
		{domain.KindForbidden, http.StatusForbidden},
		{domain.KindUnauthorized, http.StatusUnauthorized},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.kind), string(tt.kind))
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"https://karhubty.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/rentals", nil)
	req.Header.Set("Origin", "https://karhubty.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://karhubty.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
