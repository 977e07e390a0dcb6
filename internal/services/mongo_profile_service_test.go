package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const profilesNS = "watchnext.profiles"

func TestMongoProfileServiceGetOrCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert race re-reads", func(mt *mtest.T) {
		svc := &MongoProfileService{profilesCol: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Code: 11000, Message: "duplicate key error"}),
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch, bson.D{
				{Key: "user_id", Value: "u1"},
				{Key: "email", Value: "u1@example.com"},
				{Key: "onboarding_completed", Value: true},
				{Key: "streaming_services", Value: bson.A{"netflix"}},
			}),
		)

		prof, err := svc.GetOrCreate(context.Background(), "u1", "u1@example.com")
		if err != nil {
			mt.Fatal(err)
		}
		if prof.ID != "u1" || !prof.OnboardingCompleted {
			mt.Errorf("profile = %+v", prof)
		}
		if prof.FavoriteGenres == nil {
			mt.Error("missing list should decode as empty")
		}
	})

	mt.Run("creates on first access", func(mt *mtest.T) {
		svc := &MongoProfileService{profilesCol: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		prof, err := svc.GetOrCreate(context.Background(), "u2", "u2@example.com")
		if err != nil {
			mt.Fatal(err)
		}
		if prof.ID != "u2" || prof.Email != "u2@example.com" || prof.OnboardingCompleted {
			mt.Errorf("profile = %+v", prof)
		}
	})

	mt.Run("backfill failure keeps stored email", func(mt *mtest.T) {
		svc := &MongoProfileService{profilesCol: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch, bson.D{
				{Key: "user_id", Value: "u3"},
				{Key: "email", Value: ""},
			}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not allowed"}),
		)

		prof, err := svc.GetOrCreate(context.Background(), "u3", "u3@example.com")
		if err != nil {
			mt.Fatal(err)
		}
		if prof.Email != "" {
			mt.Errorf("email = %q, want the stored empty value", prof.Email)
		}
	})

	mt.Run("backfill writes email", func(mt *mtest.T) {
		svc := &MongoProfileService{profilesCol: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch, bson.D{
				{Key: "user_id", Value: "u4"},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		prof, err := svc.GetOrCreate(context.Background(), "u4", "u4@example.com")
		if err != nil {
			mt.Fatal(err)
		}
		if prof.Email != "u4@example.com" {
			mt.Errorf("email = %q", prof.Email)
		}

		mt.GetStartedEvent() // find
		if cmd := mt.GetStartedEvent().Command.String(); !strings.Contains(cmd, "u4@example.com") {
			mt.Errorf("update command = %s", cmd)
		}
	})

	mt.Run("existing profile is read only", func(mt *mtest.T) {
		svc := &MongoProfileService{profilesCol: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch, bson.D{
				{Key: "user_id", Value: "u5"},
				{Key: "email", Value: "u5@example.com"},
			}),
		)

		if _, err := svc.GetOrCreate(context.Background(), "u5", "u5@example.com"); err != nil {
			mt.Fatal(err)
		}
		if n := len(mt.GetAllStartedEvents()); n != 1 {
			mt.Errorf("%d commands sent, want the single find", n)
		}
	})
}

func TestMongoProfileServiceCompleteOnboardingUnknownUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no match", func(mt *mtest.T) {
		svc := &MongoProfileService{profilesCol: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		_, err := svc.CompleteOnboarding(context.Background(), "ghost", []string{"netflix"}, []string{"drama"})
		if !errors.Is(err, ErrProfileNotFound) {
			mt.Fatalf("err = %v, want ErrProfileNotFound", err)
		}
	})
}
