package curation

import (
	"strings"

	"github.com/watchnext/backend/internal/models"
)

// Carousel ids double as page anchors (/home#staff-picks).
const (
	CarouselStaffPicks    = "staff-picks"
	CarouselForYou        = "for-you"
	CarouselTrending      = "trending"
	CarouselAvailable     = "available"
	CarouselRecentlyAdded = "recently-added"
)

// Carousels lays the home sequences out in page order. Staff Picks, For You
// and Available are left out when empty; Trending and Recently Added are
// always present.
func (h Home) Carousels(profile *models.Profile) []models.Carousel {
	out := make([]models.Carousel, 0, 5)

	if len(h.StaffPicks) > 0 {
		out = append(out, models.Carousel{
			ID:       CarouselStaffPicks,
			Title:    "Staff Picks",
			Subtitle: "Curated by our movie experts",
			Movies:   h.StaffPicks,
		})
	}
	if len(h.ForYou) > 0 {
		out = append(out, models.Carousel{
			ID:       CarouselForYou,
			Title:    "For You",
			Subtitle: forYouSubtitle(profile.FavoriteGenres),
			Movies:   h.ForYou,
		})
	}
	out = append(out, models.Carousel{
		ID:       CarouselTrending,
		Title:    "Trending Now",
		Subtitle: "What everyone's watching",
		Movies:   h.Trending,
	})
	if len(h.Available) > 0 {
		out = append(out, models.Carousel{
			ID:       CarouselAvailable,
			Title:    "Available on Your Services",
			Subtitle: availableSubtitle(profile.StreamingServices),
			Movies:   h.Available,
		})
	}
	out = append(out, models.Carousel{
		ID:     CarouselRecentlyAdded,
		Title:  "Recently Added",
		Movies: h.RecentlyAdded,
	})

	return out
}

func forYouSubtitle(genres []string) string {
	names := make([]string, 0, 2)
	for _, g := range genres {
		if len(names) == 2 {
			break
		}
		if known, ok := models.LookupGenre(g); ok {
			g = known.Name
		}
		names = append(names, g)
	}
	return "Based on your love for " + strings.Join(names, " & ")
}

func availableSubtitle(services []string) string {
	names := make([]string, 0, 3)
	for _, s := range services {
		if len(names) == 3 {
			break
		}
		names = append(names, models.ServiceName(s))
	}
	sub := "On " + strings.Join(names, ", ")
	if len(services) > 3 {
		sub += "..."
	}
	return sub
}
