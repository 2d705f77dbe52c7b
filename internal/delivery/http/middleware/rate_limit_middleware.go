package middleware

import (
	"net"
	"net/http"
	"strings"

	"telehealth-portal/internal/service"
	"telehealth-portal/pkg/response"

	"github.com/sirupsen/logrus"
)

type RateLimitMiddleware struct {
	limiter service.RateLimiter
	log     *logrus.Logger
}

func NewRateLimitMiddleware(limiter service.RateLimiter, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, log: log}
}

// Limit keys requests by authenticated user, falling back to the client IP.
// Redis failures let the request through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter, err := m.limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			m.log.Warnf("Rate limiter unavailable: %+v", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			response.TooManyRequests(w, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
