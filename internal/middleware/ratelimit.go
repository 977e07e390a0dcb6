package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/watchnext/backend/internal/models"
)

// RateLimitByUser limits requests per authenticated user, falling back to
// the client IP when no user is on the context.
func RateLimitByUser(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if uid := GetUserID(r.Context()); uid != "" {
				return "user:" + uid, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, models.NewErrorResponse("Too many requests"))
		}),
	)
}
