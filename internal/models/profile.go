package models

import "time"

// Profile is the per-user preference record, keyed by the identity provider's user id.
type Profile struct {
	ID                  string    `json:"id" bson:"user_id"`
	Email               string    `json:"email" bson:"email,omitempty"`
	DisplayName         string    `json:"full_name" bson:"full_name,omitempty"`
	OnboardingCompleted bool      `json:"onboarding_completed" bson:"onboarding_completed"`
	StreamingServices   []string  `json:"streaming_services" bson:"streaming_services"`
	FavoriteGenres      []string  `json:"favorite_genres" bson:"favorite_genres"`
	IsAdmin             bool      `json:"is_admin" bson:"is_admin"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

// OnboardingRequest carries both onboarding steps in one submission.
type OnboardingRequest struct {
	StreamingServices []string `json:"streaming_services" validate:"required,min=1,dive,required"`
	FavoriteGenres    []string `json:"favorite_genres" validate:"required,min=1,dive,required"`
}

// Validate checks that every selected id exists in the catalog. Shape rules
// (non-empty lists) are enforced by struct tags.
func (r *OnboardingRequest) Validate() map[string]string {
	errors := make(map[string]string)

	for _, id := range r.StreamingServices {
		if _, ok := LookupStreamingService(id); !ok {
			errors["streaming_services"] = "Unknown streaming service: " + id
			break
		}
	}
	for _, id := range r.FavoriteGenres {
		if _, ok := LookupGenre(id); !ok {
			errors["favorite_genres"] = "Unknown genre: " + id
			break
		}
	}

	return errors
}
