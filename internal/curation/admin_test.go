package curation

import (
	"testing"

	"github.com/watchnext/backend/internal/models"
)

func TestPartitionStaffPicks(t *testing.T) {
	movies := []*models.Movie{
		{ID: "1", Title: "Alien", StaffPick: true},
		{ID: "2", Title: "Aliens"},
		{ID: "3", Title: "Heat"},
	}

	tests := []struct {
		name    string
		search  string
		picks   []string
		results []string
	}{
		{"empty search matches all non-picks", "", []string{"1"}, []string{"2", "3"}},
		{"no match", "zzz", []string{"1"}, []string{}},
		{"case-insensitive substring", "LIEN", []string{"1"}, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PartitionStaffPicks(movies, tt.search)
			equalIDs(t, "current picks", p.CurrentPicks, tt.picks...)
			equalIDs(t, "search results", p.SearchResults, tt.results...)
		})
	}
}

func TestPartitionStaffPicksEmpty(t *testing.T) {
	p := PartitionStaffPicks(nil, "alien")
	if p.CurrentPicks == nil || p.SearchResults == nil {
		t.Fatal("partition slices should be non-nil")
	}
	if len(p.CurrentPicks)+len(p.SearchResults) != 0 {
		t.Fatal("expected empty partition")
	}
}
