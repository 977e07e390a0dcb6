package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/watchnext/backend/internal/models"
)

type MongoMovieService struct {
	moviesCol *mongo.Collection
}

// mongoMovieDoc mirrors the stored row. Older rows may carry is_staff_pick
// or release_year instead of the canonical names.
type mongoMovieDoc struct {
	ID                string             `bson:"_id"`
	Title             string             `bson:"title"`
	PosterURL         *string            `bson:"poster_url,omitempty"`
	Rating            *float64           `bson:"rating,omitempty"`
	Description       *string            `bson:"description,omitempty"`
	Genres            []string           `bson:"genres"`
	Runtime           *int               `bson:"runtime,omitempty"`
	Year              *int               `bson:"year,omitempty"`
	LegacyYear        *int               `bson:"release_year,omitempty"`
	CastMembers       []string           `bson:"cast_members"`
	WhereToWatch      map[string]*string `bson:"where_to_watch"`
	StreamingServices []string           `bson:"streaming_services"`
	StaffPick         *bool              `bson:"staff_pick,omitempty"`
	LegacyStaffPick   *bool              `bson:"is_staff_pick,omitempty"`
	Featured          bool               `bson:"featured"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func NewMongoMovieService(ctx context.Context, db *mongo.Database) *MongoMovieService {
	col := db.Collection("movies")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "staff_pick", Value: 1}}},
	})

	return &MongoMovieService{moviesCol: col}
}

func movieDocToModel(d mongoMovieDoc) *models.Movie {
	year := d.Year
	if year == nil {
		year = d.LegacyYear
	}
	staffPick := false
	switch {
	case d.StaffPick != nil:
		staffPick = *d.StaffPick
	case d.LegacyStaffPick != nil:
		staffPick = *d.LegacyStaffPick
	}
	return &models.Movie{
		ID:                d.ID,
		Title:             d.Title,
		PosterURL:         d.PosterURL,
		Rating:            d.Rating,
		Description:       d.Description,
		Genres:            nonNil(d.Genres),
		Runtime:           d.Runtime,
		Year:              year,
		CastMembers:       nonNil(d.CastMembers),
		WhereToWatch:      d.WhereToWatch,
		StreamingServices: nonNil(d.StreamingServices),
		StaffPick:         staffPick,
		Featured:          d.Featured,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (s *MongoMovieService) List(ctx context.Context) ([]*models.Movie, error) {
	defer observeFetch("mongo", "movies", time.Now())

	cur, err := s.moviesCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Movie, 0)
	for cur.Next(ctx) {
		var doc mongoMovieDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, movieDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoMovieService) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	var doc mongoMovieDoc
	if err := s.moviesCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movieDocToModel(doc), nil
}

// SetStaffPick writes the canonical field and drops the legacy alias so the
// two can never disagree.
func (s *MongoMovieService) SetStaffPick(ctx context.Context, id string, staffPick bool) error {
	if id == "" {
		return ErrBadInput
	}
	res, err := s.moviesCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"staff_pick": staffPick, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"is_staff_pick": ""},
	})
	if err != nil {
		return fmt.Errorf("set staff pick %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
