package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/watchnext/backend/internal/curation"
	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/middleware"
	"github.com/watchnext/backend/internal/models"
	"github.com/watchnext/backend/internal/services"
	"github.com/watchnext/backend/internal/validation"
)

type ProfileHandler struct {
	profiles services.ProfileService
	timeout  time.Duration
}

func NewProfileHandler(profiles services.ProfileService, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, timeout: timeout}
}

// GetProfile returns the caller's profile as loaded by middleware.LoadProfile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	prof := middleware.GetProfile(r.Context())
	if prof == nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// CompleteOnboarding stores both onboarding selections and marks the
// profile onboarded.
func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.OnboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StreamingServices = curation.NormalizeSelection(req.StreamingServices)
	req.FavoriteGenres = curation.NormalizeSelection(req.FavoriteGenres)

	if errs := validation.Struct(&req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	prof, err := h.profiles.CompleteOnboarding(ctx, userID, req.StreamingServices, req.FavoriteGenres)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		logging.Error().Err(err).Str("user", userID).Msg("complete onboarding")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to save preferences"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}
