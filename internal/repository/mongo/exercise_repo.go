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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the catalog.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]domain.Exercise, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.Exercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return exercises, nil
}

func (r *mongoExerciseRepository) ListByWorkoutType(ctx context.Context, t domain.WorkoutType) ([]domain.Exercise, error) {
	return r.find(ctx,
		bson.M{"workoutType": t, "isWarmUp": false},
		bson.D{{Key: "orderInWorkout", Value: 1}},
	)
}

func (r *mongoExerciseRepository) ListWarmUps(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{"isWarmUp": true}, bson.D{{Key: "warmUpOrder", Value: 1}})
}

func (r *mongoExerciseRepository) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{}, bson.D{
		{Key: "workoutType", Value: 1},
		{Key: "warmUpOrder", Value: 1},
		{Key: "orderInWorkout", Value: 1},
	})
}

func (r *mongoExerciseRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// AddSubstitute adds substituteID to the exercise's substitute list; repeats are no-ops.
func (r *mongoExerciseRepository) AddSubstitute(ctx context.Context, id, substituteID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"substituteIds": substituteID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExerciseRepository) SetVideoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	update := bson.M{"$set": bson.M{"videoObjectKey": objectKey, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutType", Value: 1}, {Key: "isWarmUp", Value: 1}, {Key: "orderInWorkout", Value: 1}}},
		{Keys: bson.D{{Key: "isWarmUp", Value: 1}, {Key: "warmUpOrder", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}
