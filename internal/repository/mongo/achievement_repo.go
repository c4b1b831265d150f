package mongo

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	achievementCollectionName = "achievements"
	fitbitDailyCollectionName = "fitbit_daily"
)

type mongoAchievementRepository struct {
	collection *mongo.Collection
}

func NewMongoAchievementRepository(db *mongo.Database) repository.AchievementRepository {
	return &mongoAchievementRepository{collection: db.Collection(achievementCollectionName)}
}

func (r *mongoAchievementRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "unlockedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	achievements := []domain.Achievement{}
	if err = cursor.All(ctx, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *mongoAchievementRepository) Create(ctx context.Context, a *domain.Achievement) error {
	a.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, a)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func EnsureAchievementIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "achievementType", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}

type mongoFitbitDailyRepository struct {
	collection *mongo.Collection
}

func NewMongoFitbitDailyRepository(db *mongo.Database) repository.FitbitDailyRepository {
	return &mongoFitbitDailyRepository{collection: db.Collection(fitbitDailyCollectionName)}
}

// Upsert only sets the fields the caller reported.
func (r *mongoFitbitDailyRepository) Upsert(ctx context.Context, day *domain.FitbitDaily) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if day.Steps != nil {
		set["steps"] = *day.Steps
	}
	if day.ActiveMinutes != nil {
		set["activeMinutes"] = *day.ActiveMinutes
	}
	if day.RestingHR != nil {
		set["restingHr"] = *day.RestingHR
	}
	if day.SleepMinutes != nil {
		set["sleepDurationMins"] = *day.SleepMinutes
	}
	if day.SleepEfficiency != nil {
		set["sleepScore"] = *day.SleepEfficiency
	}
	if day.RecoveryRecommendation != nil {
		set["recoveryRecommendation"] = *day.RecoveryRecommendation
	}
	filter := bson.M{"userId": day.UserID, "date": day.Date}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

func (r *mongoFitbitDailyRepository) Get(ctx context.Context, userID primitive.ObjectID, date string) (*domain.FitbitDaily, error) {
	var day domain.FitbitDaily
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

func (r *mongoFitbitDailyRepository) ListSince(ctx context.Context, userID primitive.ObjectID, sinceDate string) ([]domain.FitbitDaily, error) {
	filter := bson.M{"userId": userID, "date": bson.M{"$gte": sinceDate}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	days := []domain.FitbitDaily{}
	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func EnsureFitbitDailyIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
