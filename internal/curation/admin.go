package curation

import (
	"strings"

	"github.com/watchnext/backend/internal/models"
)

// Partition is the staff-pick admin view of one snapshot.
type Partition struct {
	// CurrentPicks ignores the search string.
	CurrentPicks []*models.Movie
	// SearchResults are non-picks whose title contains the search string.
	SearchResults []*models.Movie
}

// PartitionStaffPicks splits the catalog for the admin screen. The search is
// a case-insensitive substring match on the title; "" matches every
// non-pick.
func PartitionStaffPicks(movies []*models.Movie, search string) Partition {
	p := Partition{
		CurrentPicks:  make([]*models.Movie, 0),
		SearchResults: make([]*models.Movie, 0),
	}
	needle := strings.ToLower(search)
	for _, m := range movies {
		if m.StaffPick {
			p.CurrentPicks = append(p.CurrentPicks, m)
			continue
		}
		if strings.Contains(strings.ToLower(m.Title), needle) {
			p.SearchResults = append(p.SearchResults, m)
		}
	}
	return p
}
