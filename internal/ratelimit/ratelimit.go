// Package ratelimit limits requests per client key over a one-minute window.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Window is the span every limiter counts requests over.
const Window = time.Minute

// Limiter decides whether one more request for key is allowed. When it is
// not, retryAfter is how long until the next request would be.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration)
}

// ClientIP extracts the real client IP. With trustedProxies > 0 it reads the
// entry our own proxies appended to X-Forwarded-For, so clients cannot spoof it.
func ClientIP(r *http.Request, trustedProxies int) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && trustedProxies > 0 {
		parts := strings.Split(xff, ",")
		idx := len(parts) - trustedProxies
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
