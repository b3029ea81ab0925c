package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/ratelimit"
)

// SecurityHeaders returns middleware adding security response headers (CSP,
// X-Frame-Options, etc.). connectOrigins are added to the CSP connect-src so
// the viewer can stream the point-cloud dataset.
func SecurityHeaders(connectOrigins ...string) func(http.Handler) http.Handler {
	connect := "'self'"
	for _, o := range connectOrigins {
		if o != "" {
			connect += " " + o
		}
	}
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"img-src 'self' data:",
		"connect-src " + connect,
		"worker-src 'self' blob:",
		"frame-ancestors 'none'",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("X-XSS-Protection", "0")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Content-Security-Policy", csp)
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			next.ServeHTTP(w, r)
		})
	}
}

// Origin returns the scheme://host part of rawURL, or "" if it has none.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// RateLimit returns middleware enforcing l per client IP. trustedProxies is
// the number of reverse proxies in front of the server.
func RateLimit(l ratelimit.Limiter, trustedProxies int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ratelimit.ClientIP(r, trustedProxies)
			ok, retryAfter := l.Allow(r.Context(), ip)
			if !ok {
				metrics.IncContact("rate_limited")
				slog.Warn("rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
