package services

import (
	"context"
	"time"

	"github.com/watchnext/backend/internal/models"
	"github.com/watchnext/backend/internal/storage"
)

// MemoryProfileService stores profiles in dataDir/profiles.json keyed by user id.
type MemoryProfileService struct {
	store *storage.JSONStore[map[string]*models.Profile]
}

func NewMemoryProfileService(dataDir string) (*MemoryProfileService, error) {
	store, err := storage.NewJSONStore[map[string]*models.Profile](dataDir, "profiles.json")
	if err != nil {
		return nil, err
	}
	return &MemoryProfileService{store: store}, nil
}

func (s *MemoryProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	defer observeFetch("memory", "profile", time.Now())

	profiles, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	prof, ok := profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return prof, nil
}

func (s *MemoryProfileService) GetOrCreate(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	// Most calls find a complete profile; only creation and email backfill
	// take the write lock.
	profiles, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if prof, ok := profiles[userID]; ok && (email == "" || prof.Email != "") {
		return prof, nil
	}

	var out *models.Profile
	err = s.store.Update(func(profiles *map[string]*models.Profile) error {
		if *profiles == nil {
			*profiles = make(map[string]*models.Profile)
		}
		now := time.Now().UTC()
		if prof, ok := (*profiles)[userID]; ok {
			if email != "" && prof.Email == "" {
				prof.Email = email
				prof.UpdatedAt = now
			}
			out = prof
			return nil
		}
		out = &models.Profile{
			ID:                userID,
			Email:             email,
			StreamingServices: []string{},
			FavoriteGenres:    []string{},
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		(*profiles)[userID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MemoryProfileService) CompleteOnboarding(ctx context.Context, userID string, streamingServices, favoriteGenres []string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	var out *models.Profile
	err := s.store.Update(func(profiles *map[string]*models.Profile) error {
		prof, ok := (*profiles)[userID]
		if !ok {
			return ErrProfileNotFound
		}
		prof.StreamingServices = streamingServices
		prof.FavoriteGenres = favoriteGenres
		prof.OnboardingCompleted = true
		prof.UpdatedAt = time.Now().UTC()
		out = prof
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetAdmin flips the admin flag. It exists for local setups; hosted
// backends manage is_admin directly.
func (s *MemoryProfileService) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	return s.store.Update(func(profiles *map[string]*models.Profile) error {
		prof, ok := (*profiles)[userID]
		if !ok {
			return ErrProfileNotFound
		}
		prof.IsAdmin = isAdmin
		prof.UpdatedAt = time.Now().UTC()
		return nil
	})
}
