package services

import (
	"context"
	"slices"
	"time"

	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/models"
	"github.com/watchnext/backend/internal/storage"
)

// MemoryMovieService keeps the catalog in a local JSON file. Every List
// decodes the file again, so callers always get a fresh snapshot.
type MemoryMovieService struct {
	store *storage.JSONStore[[]*models.Movie]
}

// NewMemoryMovieService opens dataDir/catalog.json, seeding it with the
// sample catalog when it does not exist yet.
func NewMemoryMovieService(dataDir string) (*MemoryMovieService, error) {
	store, err := storage.NewJSONStore[[]*models.Movie](dataDir, "catalog.json")
	if err != nil {
		return nil, err
	}
	if !store.Exists() {
		if err := store.Save(SeedMovies(time.Now().UTC())); err != nil {
			return nil, err
		}
		logging.Info().Str("path", store.Path()).Msg("seeded sample catalog")
	}
	return &MemoryMovieService{store: store}, nil
}

func (s *MemoryMovieService) List(ctx context.Context) ([]*models.Movie, error) {
	defer observeFetch("memory", "movies", time.Now())

	movies, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(movies, func(a, b *models.Movie) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if movies == nil {
		movies = []*models.Movie{}
	}
	return movies, nil
}

func (s *MemoryMovieService) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	movies, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	for _, m := range movies {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMovieNotFound
}

func (s *MemoryMovieService) SetStaffPick(ctx context.Context, id string, staffPick bool) error {
	if id == "" {
		return ErrBadInput
	}
	return s.store.Update(func(movies *[]*models.Movie) error {
		for _, m := range *movies {
			if m.ID == id {
				m.StaffPick = staffPick
				m.UpdatedAt = time.Now().UTC()
				return nil
			}
		}
		return ErrMovieNotFound
	})
}
