package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/config"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/infrastructure/ratelimit"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"

	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware caps requests per client IP in fixed windows.
type RateLimitMiddleware struct {
	store ratelimit.Store
	cfg   config.RateLimitConfig
	log   *logrus.Logger
}

func NewRateLimitMiddleware(store ratelimit.Store, cfg config.RateLimitConfig, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

// Limit fails open when the store is unavailable so a Redis outage does not block logins.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "auth:" + ClientIP(r)
		count, resetIn, err := m.store.Hit(r.Context(), key, m.cfg.Window)
		if err != nil {
			m.log.Warnf("Failed to check rate limit for %s: %+v", key, err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := int64(m.cfg.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.cfg.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(m.cfg.Requests) {
			m.log.Infof("Rate limit exceeded for %s", key)
			response.TooManyRequests(w, int(math.Ceil(resetIn.Seconds())))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
