package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/watchnext/backend/internal/curation"
	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/metrics"
	"github.com/watchnext/backend/internal/middleware"
	"github.com/watchnext/backend/internal/models"
	"github.com/watchnext/backend/internal/services"
)

// BrowseHandler serves the onboarded user's home feed and movie pages.
type BrowseHandler struct {
	movies  services.MovieService
	timeout time.Duration
}

func NewBrowseHandler(movies services.MovieService, timeout time.Duration) *BrowseHandler {
	return &BrowseHandler{movies: movies, timeout: timeout}
}

func (h *BrowseHandler) Home(w http.ResponseWriter, r *http.Request) {
	prof := middleware.GetProfile(r.Context())
	if prof == nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	movies, err := h.movies.List(ctx)
	if err != nil {
		logging.Error().Err(err).Str("user", prof.ID).Msg("list movies")
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Failed to load movies"))
		return
	}
	metrics.CatalogSize.Set(float64(len(movies)))

	home := curation.BuildHome(movies, prof)
	metrics.HomeFeedsTotal.Inc()

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.HomeFeed{
		DisplayName: displayName(prof),
		IsAdmin:     prof.IsAdmin,
		Carousels:   home.Carousels(prof),
	}))
}

func (h *BrowseHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	prof := middleware.GetProfile(r.Context())
	if prof == nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	movieID := chi.URLParam(r, "movieId")

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	movie, err := h.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Movie not found"))
			return
		}
		logging.Error().Err(err).Str("movie", movieID).Msg("get movie")
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Failed to load movie"))
		return
	}

	available := curation.AvailableServices(movie, prof)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MovieDetail{
		Movie:                      movie,
		AvailableServices:          available,
		AvailableWithSubscriptions: len(available) > 0,
		RatingLabel:                movie.RatingLabel(),
	}))
}
