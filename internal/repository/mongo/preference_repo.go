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
	preferenceCollectionName = "exercise_preferences"
	injuryCollectionName     = "injuries"
)

type mongoPreferenceRepository struct {
	collection *mongo.Collection
}

func NewMongoPreferenceRepository(db *mongo.Database) repository.PreferenceRepository {
	return &mongoPreferenceRepository{collection: db.Collection(preferenceCollectionName)}
}

func (r *mongoPreferenceRepository) Get(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.ExercisePreference, error) {
	var pref domain.ExercisePreference
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "exerciseId": exerciseID}).Decode(&pref)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

func (r *mongoPreferenceRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ExercisePreference, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prefs []domain.ExercisePreference
	if err = cursor.All(ctx, &prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = []domain.ExercisePreference{}
	}
	return prefs, nil
}

// Upsert replaces the mutable fields of the (user, exercise) preference.
func (r *mongoPreferenceRepository) Upsert(ctx context.Context, pref *domain.ExercisePreference) error {
	now := time.Now().UTC()
	filter := bson.M{"userId": pref.UserID, "exerciseId": pref.ExerciseID}
	update := bson.M{
		"$set": bson.M{
			"blacklisted":             pref.Blacklisted,
			"currentWeight":           pref.CurrentWeight,
			"sessionsAtCurrentWeight": pref.SessionsAtCurrentWeight,
			"totalSessions":           pref.TotalSessions,
			"lastPerformedAt":         pref.LastPerformedAt,
			"updatedAt":               now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func EnsurePreferenceIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}

type mongoInjuryRepository struct {
	collection *mongo.Collection
}

func NewMongoInjuryRepository(db *mongo.Database) repository.InjuryRepository {
	return &mongoInjuryRepository{collection: db.Collection(injuryCollectionName)}
}

func (r *mongoInjuryRepository) Create(ctx context.Context, injury *domain.Injury) (primitive.ObjectID, error) {
	injury.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, injury); err != nil {
		return primitive.NilObjectID, err
	}
	return injury.ID, nil
}

func (r *mongoInjuryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Injury, error) {
	var injury domain.Injury
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&injury)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &injury, nil
}

func (r *mongoInjuryRepository) ListActive(ctx context.Context, userID primitive.ObjectID) ([]domain.Injury, error) {
	filter := bson.M{"userId": userID, "resolvedAt": bson.M{"$exists": false}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var injuries []domain.Injury
	if err = cursor.All(ctx, &injuries); err != nil {
		return nil, err
	}
	if injuries == nil {
		injuries = []domain.Injury{}
	}
	return injuries, nil
}

func (r *mongoInjuryRepository) Resolve(ctx context.Context, id primitive.ObjectID, resolvedAt time.Time) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"resolvedAt": resolvedAt.UTC()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureInjuryIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "resolvedAt", Value: 1}}},
	})
}
