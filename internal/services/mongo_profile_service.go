package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/models"
)

type MongoProfileService struct {
	profilesCol *mongo.Collection
}

func NewMongoProfileService(ctx context.Context, db *mongo.Database) *MongoProfileService {
	col := db.Collection("profiles")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoProfileService{profilesCol: col}
}

func (s *MongoProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	defer observeFetch("mongo", "profile", time.Now())

	var prof models.Profile
	if err := s.profilesCol.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prof); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	normalizeProfile(&prof)
	return &prof, nil
}

// GetOrCreate returns the user's profile, inserting an empty one on first
// access. A concurrent first request may win the insert; the loser re-reads.
func (s *MongoProfileService) GetOrCreate(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}
	now := time.Now().UTC()

	prof, err := s.GetByUserID(ctx, userID)
	if err == nil {
		if email != "" && prof.Email == "" {
			_, err := s.profilesCol.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
				"$set": bson.M{"email": email, "updated_at": now},
			})
			if err != nil {
				logging.Warn().Err(err).Str("user", userID).Msg("backfill profile email")
				return prof, nil
			}
			prof.Email = email
			prof.UpdatedAt = now
		}
		return prof, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	fresh := models.Profile{
		ID:                userID,
		Email:             email,
		StreamingServices: []string{},
		FavoriteGenres:    []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := s.profilesCol.InsertOne(ctx, fresh); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return s.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return &fresh, nil
}

func (s *MongoProfileService) CompleteOnboarding(ctx context.Context, userID string, streamingServices, favoriteGenres []string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	res, err := s.profilesCol.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
		"$set": bson.M{
			"streaming_services":   streamingServices,
			"favorite_genres":      favoriteGenres,
			"onboarding_completed": true,
			"updated_at":           time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrProfileNotFound
	}
	return s.GetByUserID(ctx, userID)
}

func normalizeProfile(p *models.Profile) {
	p.StreamingServices = nonNil(p.StreamingServices)
	p.FavoriteGenres = nonNil(p.FavoriteGenres)
}
