package services

import (
	"context"
	"errors"
	"time"

	"github.com/watchnext/backend/internal/metrics"
	"github.com/watchnext/backend/internal/models"
)

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrBadInput           = errors.New("invalid input")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// MovieService is the catalog collaborator. List returns a full snapshot
// ordered by created_at, newest first.
type MovieService interface {
	List(ctx context.Context) ([]*models.Movie, error)
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	// SetStaffPick is a single point write. Callers re-fetch afterwards.
	SetStaffPick(ctx context.Context, id string, staffPick bool) error
}

// ProfileService is the per-user preferences collaborator.
type ProfileService interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// GetOrCreate returns the user's profile, creating an empty
	// not-yet-onboarded one on first access.
	GetOrCreate(ctx context.Context, userID, email string) (*models.Profile, error)
	CompleteOnboarding(ctx context.Context, userID string, streamingServices, favoriteGenres []string) (*models.Profile, error)
}

// observeFetch records how long a backend read took.
func observeFetch(backend, entity string, start time.Time) {
	metrics.BackendFetchDuration.WithLabelValues(backend, entity).Observe(time.Since(start).Seconds())
}
