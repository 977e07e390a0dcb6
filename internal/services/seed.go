package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchnext/backend/internal/models"
)

// movieNamespace keeps seeded ids stable across restarts.
var movieNamespace = uuid.MustParse("6f1c0a56-8f0e-4b8e-9a53-3c1f4b2d7e10")

type seedMovie struct {
	title    string
	year     int
	runtime  int
	rating   float64
	genres   []string
	services []string
	pick     bool
}

var seedCatalog = []seedMovie{
	{"Dune: Part Two", 2024, 166, 8.6, []string{"Sci-Fi", "Adventure"}, []string{"max"}, true},
	{"Past Lives", 2023, 106, 7.9, []string{"Drama", "Romance"}, []string{"prime", "paramount"}, true},
	{"Talk to Me", 2023, 95, 7.1, []string{"Horror", "Thriller"}, []string{"netflix"}, false},
	{"Spider-Man: Across the Spider-Verse", 2023, 140, 8.6, []string{"Animation", "Action"}, []string{"netflix", "disney"}, false},
	{"The Holdovers", 2023, 133, 7.9, []string{"Comedy", "Drama"}, []string{"peacock"}, false},
	{"Anatomy of a Fall", 2023, 151, 7.7, []string{"Drama", "Thriller"}, []string{"hulu"}, true},
	{"Everything Everywhere All at Once", 2022, 139, 7.8, []string{"Action", "Comedy", "Sci-Fi"}, []string{"netflix", "prime"}, false},
	{"Nope", 2022, 130, 6.8, []string{"Horror", "Sci-Fi"}, []string{"peacock", "prime"}, false},
	{"Free Solo", 2018, 100, 8.1, []string{"Documentary"}, []string{"disney", "hulu"}, false},
	{"The Lord of the Rings: The Fellowship of the Ring", 2001, 178, 8.9, []string{"Fantasy", "Adventure"}, []string{"max", "prime"}, false},
	{"Knives Out", 2019, 130, 7.9, []string{"Comedy", "Crime", "Mystery"}, []string{"prime"}, false},
	{"Arrival", 2016, 116, 7.9, []string{"Sci-Fi", "Drama"}, []string{"paramount", "apple"}, false},
}

// SeedMovies builds the sample catalog used by the memory backend. The
// first entry is the newest.
func SeedMovies(now time.Time) []*models.Movie {
	out := make([]*models.Movie, 0, len(seedCatalog))
	for i, s := range seedCatalog {
		year, runtime, rating := s.year, s.runtime, s.rating
		created := now.Add(-time.Duration(i) * time.Hour)
		out = append(out, &models.Movie{
			ID:                uuid.NewSHA1(movieNamespace, []byte(s.title)).String(),
			Title:             s.title,
			Rating:            &rating,
			Genres:            s.genres,
			Runtime:           &runtime,
			Year:              &year,
			CastMembers:       []string{},
			WhereToWatch:      map[string]*string{},
			StreamingServices: s.services,
			StaffPick:         s.pick,
			CreatedAt:         created,
			UpdatedAt:         created,
		})
	}
	return out
}
