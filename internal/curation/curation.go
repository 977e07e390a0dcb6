package curation

import (
	"slices"
	"strings"

	"github.com/watchnext/backend/internal/models"
)

// CarouselLimit caps the Trending and Recently Added rows.
const CarouselLimit = 10

// Home holds the five derived sequences shown on the home page.
type Home struct {
	StaffPicks    []*models.Movie
	ForYou        []*models.Movie
	Trending      []*models.Movie
	Available     []*models.Movie
	RecentlyAdded []*models.Movie
}

// BuildHome computes every home-page sequence from one snapshot. The
// profile must not be nil; callers reject unauthenticated or
// non-onboarded users before getting here.
func BuildHome(movies []*models.Movie, profile *models.Profile) Home {
	if profile == nil {
		panic("curation: BuildHome called without a profile")
	}
	available := Available(movies, profile)
	return Home{
		StaffPicks:    StaffPicks(movies),
		ForYou:        forYouFrom(available, profile),
		Trending:      Trending(movies),
		Available:     available,
		RecentlyAdded: RecentlyAdded(movies),
	}
}

// StaffPicks returns the flagged movies in input order.
func StaffPicks(movies []*models.Movie) []*models.Movie {
	out := make([]*models.Movie, 0)
	for _, m := range movies {
		if m.StaffPick {
			out = append(out, m)
		}
	}
	return out
}

// Available returns movies offered on at least one of the user's services.
// No selected services means no results, not "no filter".
func Available(movies []*models.Movie, profile *models.Profile) []*models.Movie {
	out := make([]*models.Movie, 0)
	if len(profile.StreamingServices) == 0 {
		return out
	}
	have := toSet(profile.StreamingServices, false)
	for _, m := range movies {
		if intersects(m.StreamingServices, have, false) {
			out = append(out, m)
		}
	}
	return out
}

// ForYou narrows Available to movies sharing a genre with the user's
// favorites, compared case-insensitively. Order is the input order.
func ForYou(movies []*models.Movie, profile *models.Profile) []*models.Movie {
	return forYouFrom(Available(movies, profile), profile)
}

func forYouFrom(available []*models.Movie, profile *models.Profile) []*models.Movie {
	out := make([]*models.Movie, 0)
	if len(profile.FavoriteGenres) == 0 {
		return out
	}
	liked := toSet(profile.FavoriteGenres, true)
	for _, m := range available {
		if intersects(m.Genres, liked, true) {
			out = append(out, m)
		}
	}
	return out
}

// Trending returns the CarouselLimit highest-rated movies. Unrated movies
// sort as 0 and equal ratings keep their input order.
func Trending(movies []*models.Movie) []*models.Movie {
	sorted := slices.Clone(movies)
	slices.SortStableFunc(sorted, func(a, b *models.Movie) int {
		ra, rb := ratingOrZero(a), ratingOrZero(b)
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		return 0
	})
	return head(sorted, CarouselLimit)
}

// RecentlyAdded returns the first CarouselLimit movies. The input is
// expected to already be ordered newest first; it is not re-sorted.
func RecentlyAdded(movies []*models.Movie) []*models.Movie {
	return head(movies, CarouselLimit)
}

// AvailableServices lists the movie's services the user subscribes to, in
// the movie's order.
func AvailableServices(movie *models.Movie, profile *models.Profile) []string {
	out := make([]string, 0)
	have := toSet(profile.StreamingServices, false)
	for _, s := range movie.StreamingServices {
		if _, ok := have[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeSelection turns multi-select input into an ordered set of ids:
// trimmed, lowercased, blanks and repeats dropped.
func NormalizeSelection(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func ratingOrZero(m *models.Movie) float64 {
	if m.Rating == nil {
		return 0
	}
	return *m.Rating
}

func head(movies []*models.Movie, n int) []*models.Movie {
	if len(movies) < n {
		n = len(movies)
	}
	out := make([]*models.Movie, n)
	copy(out, movies[:n])
	return out
}

func toSet(values []string, fold bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if fold {
			v = strings.ToLower(v)
		}
		set[v] = struct{}{}
	}
	return set
}

func intersects(values []string, set map[string]struct{}, fold bool) bool {
	for _, v := range values {
		if fold {
			v = strings.ToLower(v)
		}
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
