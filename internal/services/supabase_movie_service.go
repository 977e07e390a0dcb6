package services

import (
	"context"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/watchnext/backend/internal/models"
)

// SupabaseMovieService reads and writes the "movies" table.
type SupabaseMovieService struct {
	client *SupabaseClient
}

func NewSupabaseMovieService(client *SupabaseClient) *SupabaseMovieService {
	return &SupabaseMovieService{client: client}
}

func (s *SupabaseMovieService) List(ctx context.Context) ([]*models.Movie, error) {
	defer observeFetch("supabase", "movies", time.Now())

	rows, err := s.client.selectRows(ctx, "movies", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	})
	if err != nil {
		return nil, err
	}
	return parseMovieRows(rows), nil
}

func (s *SupabaseMovieService) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	rows, err := s.client.selectRows(ctx, "movies", url.Values{
		"select": {"*"},
		"id":     {eq(id)},
	})
	if err != nil {
		return nil, err
	}
	movies := parseMovieRows(rows)
	if len(movies) == 0 {
		return nil, ErrMovieNotFound
	}
	return movies[0], nil
}

func (s *SupabaseMovieService) SetStaffPick(ctx context.Context, id string, staffPick bool) error {
	if id == "" {
		return ErrBadInput
	}
	rows, err := s.client.patchRows(ctx, "movies", url.Values{"id": {eq(id)}}, map[string]interface{}{
		"staff_pick": staffPick,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if len(rows.Array()) == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func parseMovieRows(rows gjson.Result) []*models.Movie {
	out := make([]*models.Movie, 0)
	rows.ForEach(func(_, row gjson.Result) bool {
		out = append(out, parseMovieRow(row))
		return true
	})
	return out
}

// parseMovieRow maps a loosely typed row. Null or absent optional columns
// stay nil; is_staff_pick and release_year are read as fallbacks.
func parseMovieRow(row gjson.Result) *models.Movie {
	m := &models.Movie{
		ID:                row.Get("id").String(),
		Title:             row.Get("title").String(),
		PosterURL:         optString(row.Get("poster_url")),
		Rating:            optFloat(row.Get("rating")),
		Description:       optString(row.Get("description")),
		Genres:            stringList(row.Get("genres")),
		Runtime:           optInt(row.Get("runtime")),
		Year:              optInt(firstPresent(row, "year", "release_year")),
		CastMembers:       stringList(row.Get("cast_members")),
		WhereToWatch:      map[string]*string{},
		StreamingServices: stringList(row.Get("streaming_services")),
		StaffPick:         firstPresent(row, "staff_pick", "is_staff_pick").Bool(),
		Featured:          row.Get("featured").Bool(),
		CreatedAt:         row.Get("created_at").Time(),
		UpdatedAt:         row.Get("updated_at").Time(),
	}
	row.Get("where_to_watch").ForEach(func(k, v gjson.Result) bool {
		m.WhereToWatch[k.String()] = optString(v)
		return true
	})
	return m
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func firstPresent(row gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := row.Get(k); present(v) {
			return v
		}
	}
	return gjson.Result{}
}

func optString(r gjson.Result) *string {
	if !present(r) {
		return nil
	}
	v := r.String()
	return &v
}

func optFloat(r gjson.Result) *float64 {
	if !present(r) {
		return nil
	}
	v := r.Float()
	return &v
}

func optInt(r gjson.Result) *int {
	if !present(r) {
		return nil
	}
	v := int(r.Int())
	return &v
}

func stringList(r gjson.Result) []string {
	out := make([]string, 0)
	for _, v := range r.Array() {
		if present(v) {
			out = append(out, v.String())
		}
	}
	return out
}
