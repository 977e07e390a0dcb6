package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/models"
)

// SupabaseProfileService reads and writes the "profiles" table. Rows are
// keyed by the auth user's id.
type SupabaseProfileService struct {
	client *SupabaseClient
}

func NewSupabaseProfileService(client *SupabaseClient) *SupabaseProfileService {
	return &SupabaseProfileService{client: client}
}

func (s *SupabaseProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	defer observeFetch("supabase", "profile", time.Now())

	rows, err := s.client.selectRows(ctx, "profiles", url.Values{
		"select": {"*"},
		"id":     {eq(userID)},
	})
	if err != nil {
		return nil, err
	}
	return firstProfile(rows)
}

func (s *SupabaseProfileService) GetOrCreate(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	prof, err := s.GetByUserID(ctx, userID)
	if err == nil {
		if email != "" && prof.Email == "" {
			return s.backfillEmail(ctx, prof, email), nil
		}
		return prof, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	rows, err := s.client.insertRow(ctx, "profiles", map[string]interface{}{
		"id":                   userID,
		"email":                email,
		"onboarding_completed": false,
		"streaming_services":   []string{},
		"favorite_genres":      []string{},
	})
	if err != nil {
		// Lost a race with another first request (or the signup trigger).
		var se *SupabaseError
		if errors.As(err, &se) && se.Status == http.StatusConflict {
			return s.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return firstProfile(rows)
}

func (s *SupabaseProfileService) CompleteOnboarding(ctx context.Context, userID string, streamingServices, favoriteGenres []string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}
	rows, err := s.client.patchRows(ctx, "profiles", url.Values{"id": {eq(userID)}}, map[string]interface{}{
		"streaming_services":   streamingServices,
		"favorite_genres":      favoriteGenres,
		"onboarding_completed": true,
		"updated_at":           time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return firstProfile(rows)
}

// backfillEmail stores email on a profile created without one. A failed
// write is logged and the stored profile returned unchanged.
func (s *SupabaseProfileService) backfillEmail(ctx context.Context, prof *models.Profile, email string) *models.Profile {
	rows, err := s.client.patchRows(ctx, "profiles", url.Values{"id": {eq(prof.ID)}}, map[string]interface{}{
		"email":      email,
		"updated_at": time.Now().UTC(),
	})
	if err == nil {
		var updated *models.Profile
		if updated, err = firstProfile(rows); err == nil {
			return updated
		}
	}
	logging.Warn().Err(err).Str("user", prof.ID).Msg("backfill profile email")
	return prof
}

func firstProfile(rows gjson.Result) (*models.Profile, error) {
	list := rows.Array()
	if len(list) == 0 {
		return nil, ErrProfileNotFound
	}
	return parseProfileRow(list[0]), nil
}

func parseProfileRow(row gjson.Result) *models.Profile {
	return &models.Profile{
		ID:                  row.Get("id").String(),
		Email:               row.Get("email").String(),
		DisplayName:         row.Get("full_name").String(),
		OnboardingCompleted: row.Get("onboarding_completed").Bool(),
		StreamingServices:   stringList(row.Get("streaming_services")),
		FavoriteGenres:      stringList(row.Get("favorite_genres")),
		IsAdmin:             row.Get("is_admin").Bool(),
		CreatedAt:           row.Get("created_at").Time(),
		UpdatedAt:           row.Get("updated_at").Time(),
	}
}
