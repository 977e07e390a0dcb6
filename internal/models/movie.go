package models

import (
	"math"
	"strconv"
	"time"
)

// Movie is a catalog entry. Optional columns are pointers so that a missing
// value is never confused with zero.
type Movie struct {
	ID                string             `json:"id" bson:"_id"`
	Title             string             `json:"title" bson:"title"`
	PosterURL         *string            `json:"poster_url" bson:"poster_url,omitempty"`
	Rating            *float64           `json:"rating" bson:"rating,omitempty"`
	Description       *string            `json:"description" bson:"description,omitempty"`
	Genres            []string           `json:"genres" bson:"genres"`
	Runtime           *int               `json:"runtime" bson:"runtime,omitempty"`
	Year              *int               `json:"year" bson:"year,omitempty"`
	CastMembers       []string           `json:"cast_members" bson:"cast_members"`
	WhereToWatch      map[string]*string `json:"where_to_watch" bson:"where_to_watch"`
	StreamingServices []string           `json:"streaming_services" bson:"streaming_services"`
	StaffPick         bool               `json:"staff_pick" bson:"staff_pick"`
	Featured          bool               `json:"featured" bson:"featured"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// RatingLabel formats the rating with one decimal, or "" when unrated.
func (m *Movie) RatingLabel() string {
	if m.Rating == nil {
		return ""
	}
	// Halves round away from zero: 7.25 is "7.3".
	return strconv.FormatFloat(math.Round(*m.Rating*10)/10, 'f', 1, 64)
}

// MovieDetail is the movie page payload.
type MovieDetail struct {
	Movie *Movie `json:"movie"`
	// AvailableServices are the movie's services the caller subscribes to.
	AvailableServices          []string `json:"available_services"`
	AvailableWithSubscriptions bool     `json:"available_with_subscriptions"`
	RatingLabel                string   `json:"rating_label,omitempty"`
}

// Carousel is one named row on the home page.
type Carousel struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Movies   []*Movie `json:"movies"`
}

type HomeFeed struct {
	DisplayName string     `json:"display_name"`
	IsAdmin     bool       `json:"is_admin"`
	Carousels   []Carousel `json:"carousels"`
}

// StaffPickPartition is the admin curation view.
type StaffPickPartition struct {
	Search        string   `json:"search"`
	CurrentPicks  []*Movie `json:"current_picks"`
	SearchResults []*Movie `json:"search_results"`
}

type SetStaffPickRequest struct {
	StaffPick *bool `json:"staff_pick" validate:"required"`
}
