package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/models"
)

// ProfileLoader is satisfied by every services.ProfileService.
type ProfileLoader interface {
	GetOrCreate(ctx context.Context, userID, email string) (*models.Profile, error)
}

// LoadProfile attaches the caller's profile to the request, creating a blank
// one on first access. It must run after an auth middleware.
func LoadProfile(profiles ProfileLoader, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewRedirectResponse("Unauthorized", "/login"))
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			prof, err := profiles.GetOrCreate(ctx, userID, GetUserEmail(r.Context()))
			cancel()
			if err != nil {
				logging.Error().Err(err).Str("user", userID).Msg("load profile")
				writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ProfileKey, prof)))
		})
	}
}

// GetProfile returns the profile stored by LoadProfile, or nil.
func GetProfile(ctx context.Context) *models.Profile {
	prof, _ := ctx.Value(ProfileKey).(*models.Profile)
	return prof
}

// RequireOnboarding sends users who have not finished onboarding back to it.
func RequireOnboarding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prof := GetProfile(r.Context())
		if prof == nil {
			writeJSON(w, http.StatusUnauthorized, models.NewRedirectResponse("Unauthorized", "/login"))
			return
		}
		if !prof.OnboardingCompleted {
			writeJSON(w, http.StatusForbidden, models.NewRedirectResponse("Onboarding required", "/onboarding"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prof := GetProfile(r.Context())
		if prof == nil || !prof.IsAdmin {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
