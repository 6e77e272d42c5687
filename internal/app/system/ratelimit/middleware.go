// internal/app/system/ratelimit/middleware.go
package ratelimit

import (
	"net/http"

	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
)

// Middleware limits requests per client IP using the given Limiter.
// Over-limit requests get a 429 with the supplied message.
func Middleware(l *Limiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(ClientIP(r)) {
				respond.Error(w, http.StatusTooManyRequests, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
