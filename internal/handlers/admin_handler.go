package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/watchnext/backend/internal/curation"
	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/metrics"
	"github.com/watchnext/backend/internal/models"
	"github.com/watchnext/backend/internal/services"
	"github.com/watchnext/backend/internal/validation"
)

// AdminHandler serves the staff-pick curation screen. Writes go through a
// per-movie gate so a second toggle of the same movie is refused until the
// first one has been written and re-read.
type AdminHandler struct {
	movies  services.MovieService
	gate    *services.ToggleGate
	timeout time.Duration
}

func NewAdminHandler(movies services.MovieService, gate *services.ToggleGate, timeout time.Duration) *AdminHandler {
	return &AdminHandler{movies: movies, gate: gate, timeout: timeout}
}

func (h *AdminHandler) ListStaffPicks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	search := r.URL.Query().Get("search")
	part, err := h.partition(ctx, search)
	if err != nil {
		logging.Error().Err(err).Msg("list staff picks")
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Failed to load movies"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(part))
}

// ToggleStaffPick flips the movie's current flag.
func (h *AdminHandler) ToggleStaffPick(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, nil)
}

// SetStaffPick sets the flag to the value in the body.
func (h *AdminHandler) SetStaffPick(w http.ResponseWriter, r *http.Request) {
	var req models.SetStaffPickRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.Struct(&req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}
	h.write(w, r, req.StaffPick)
}

// write performs one staff-pick mutation: read the current row, write the
// new value, then recompute the partition from a fresh snapshot. A nil
// value means flip.
func (h *AdminHandler) write(w http.ResponseWriter, r *http.Request, value *bool) {
	movieID := chi.URLParam(r, "movieId")
	if movieID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing movieId"))
		return
	}

	if !h.gate.Begin(movieID) {
		metrics.StaffPickTogglesTotal.WithLabelValues(metrics.ToggleConflict).Inc()
		writeJSON(w, http.StatusConflict, models.NewErrorResponse("An update for this movie is already in progress"))
		return
	}
	defer h.gate.Done(movieID)

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	movie, err := h.movies.GetByID(ctx, movieID)
	if err == nil {
		next := !movie.StaffPick
		if value != nil {
			next = *value
		}
		err = h.movies.SetStaffPick(ctx, movieID, next)
	}
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			metrics.StaffPickTogglesTotal.WithLabelValues(metrics.ToggleNotFound).Inc()
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Movie not found"))
			return
		}
		metrics.StaffPickTogglesTotal.WithLabelValues(metrics.ToggleError).Inc()
		logging.Error().Err(err).Str("movie", movieID).Msg("set staff pick")
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Failed to update staff pick"))
		return
	}
	metrics.StaffPickTogglesTotal.WithLabelValues(metrics.ToggleOK).Inc()

	part, err := h.partition(ctx, r.URL.Query().Get("search"))
	if err != nil {
		logging.Error().Err(err).Msg("reload staff picks")
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Staff pick updated but reload failed"))
		return
	}
	logging.Info().Str("movie", movieID).Int("picks", len(part.CurrentPicks)).Msg("staff pick updated")
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(part))
}

func (h *AdminHandler) partition(ctx context.Context, search string) (models.StaffPickPartition, error) {
	movies, err := h.movies.List(ctx)
	if err != nil {
		return models.StaffPickPartition{}, err
	}
	p := curation.PartitionStaffPicks(movies, search)
	return models.StaffPickPartition{
		Search:        search,
		CurrentPicks:  p.CurrentPicks,
		SearchResults: p.SearchResults,
	}, nil
}
