package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/3dmm/site/internal/ratelimit"
)

// ---------------------------------------------------------------------------
// SecurityHeaders
// ---------------------------------------------------------------------------

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders_SetsAllHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders()(okHandler()).ServeHTTP(rec, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"X-XSS-Protection":       "0",
		"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
	}
	for name, want := range headers {
		got := rec.Header().Get(name)
		if got != want {
			t.Errorf("%s: want %q, got %q", name, want, got)
		}
	}
	if hsts := rec.Header().Get("Strict-Transport-Security"); !strings.Contains(hsts, "max-age=") {
		t.Errorf("HSTS missing max-age: %s", hsts)
	}
}

func TestSecurityHeaders_CSP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders("https://assets.example.com", "")(okHandler()).ServeHTTP(rec, req)

	csp := rec.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Fatal("Content-Security-Policy header not set")
	}

	requiredDirectives := []string{
		"default-src 'self'",
		"script-src 'self'",
		"connect-src 'self' https://assets.example.com;",
		"frame-ancestors 'none'",
	}
	for _, d := range requiredDirectives {
		if !strings.Contains(csp, d) {
			t.Errorf("CSP missing directive %q: %s", d, csp)
		}
	}
}

func TestSecurityHeaders_PassesThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders()(inner).ServeHTTP(rec, req)

	if !called {
		t.Error("inner handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}

func TestOrigin(t *testing.T) {
	tests := map[string]string{
		"https://assets.example.com/pointclouds/hero/metadata.json": "https://assets.example.com",
		"http://localhost:9000/m.json":                              "http://localhost:9000",
		"/relative/metadata.json":                                   "",
		"":                                                          "",
	}
	for in, want := range tests {
		if got := Origin(in); got != want {
			t.Errorf("Origin(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func newMemoryLimiter(t *testing.T, max int) *ratelimit.Memory {
	t.Helper()
	l := ratelimit.NewMemory(max)
	t.Cleanup(l.Close)
	return l
}

func doPost(h http.Handler, remote, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/contact", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	handler := RateLimit(newMemoryLimiter(t, 5), 1)(okHandler())

	for i := 0; i < 5; i++ {
		if rec := doPost(handler, "192.168.1.1:12345", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	handler := RateLimit(newMemoryLimiter(t, 5), 1)(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = doPost(handler, "192.168.1.1:12345", "")
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on 6th request, got %d", last.Code)
	}
	if ra := last.Header().Get("Retry-After"); ra == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestRateLimit_DifferentIPsAreIndependent(t *testing.T) {
	handler := RateLimit(newMemoryLimiter(t, 2), 1)(okHandler())

	doPost(handler, "10.0.0.1:1234", "")
	doPost(handler, "10.0.0.1:1234", "")

	if rec := doPost(handler, "10.0.0.2:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("different IP should not be rate limited, got %d", rec.Code)
	}
}

func TestRateLimit_XForwardedFor_SpoofedLeftmostIgnored(t *testing.T) {
	handler := RateLimit(newMemoryLimiter(t, 1), 1)(okHandler())

	if rec := doPost(handler, "10.0.0.99:1234", "203.0.113.50"); rec.Code != http.StatusOK {
		t.Fatalf("first request should succeed, got %d", rec.Code)
	}
	if rec := doPost(handler, "10.0.0.99:1234", "9.9.9.9, 203.0.113.50"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("spoofed leftmost IP should not bypass rate limit, got %d", rec.Code)
	}
}

type stubLimiter struct {
	allowFunc func(ctx context.Context, key string) (bool, time.Duration)
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	return s.allowFunc(ctx, key)
}

func TestRateLimit_RetryAfterRoundsUp(t *testing.T) {
	var gotKey string
	l := &stubLimiter{allowFunc: func(ctx context.Context, key string) (bool, time.Duration) {
		gotKey = key
		return false, 2500 * time.Millisecond
	}}
	rec := doPost(RateLimit(l, 1)(okHandler()), "10.1.1.1:80", "")

	if gotKey != "10.1.1.1" {
		t.Errorf("limiter key = %q, want client IP", gotKey)
	}
	if ra := rec.Header().Get("Retry-After"); ra != "3" {
		t.Errorf("Retry-After = %q, want 3", ra)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := map[time.Duration]string{
		-time.Second:           "1",
		0:                      "1",
		500 * time.Millisecond: "1",
		59 * time.Second:       "60",
	}
	for d, want := range tests {
		if got := retryAfterSeconds(d); got != want {
			t.Errorf("retryAfterSeconds(%v) = %q, want %q", d, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	RequestLogger(inner).ServeHTTP(rec, req)

	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("response request id %q is not a UUID: %v", id, err)
	}
	if seen != id {
		t.Errorf("context id %q != header id %q", seen, id)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRequestLogger_ReusesIncomingID(t *testing.T) {
	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	RequestLogger(okHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != incoming {
		t.Errorf("request id = %q, want %q", got, incoming)
	}
}

func TestRequestLogger_ReplacesInvalidID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rec := httptest.NewRecorder()
	RequestLogger(okHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got == "<script>" {
		t.Error("invalid incoming id was echoed")
	}
}
