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
	workoutCollectionName     = "workouts"
	exerciseLogCollectionName = "exercise_logs"
)

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a completed workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID.IsZero() || !workout.Type.Valid() {
		return primitive.NilObjectID, errors.New("workout user ID and valid type are required")
	}
	workout.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *mongoWorkoutRepository) CountBetween(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (int64, error) {
	filter := bson.M{
		"userId":      userID,
		"completedAt": bson.M{"$gte": from, "$lt": to},
	}
	return r.collection.CountDocuments(ctx, filter)
}

func (r *mongoWorkoutRepository) CountAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// Latest returns the most recently completed workout.
func (r *mongoWorkoutRepository) Latest(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *mongoWorkoutRepository) ListSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error) {
	filter := bson.M{"userId": userID, "completedAt": bson.M{"$gte": since}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) SetFitbitVerified(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"fitbitVerified": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes for the workouts collection.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}}},
	})
}

type mongoExerciseLogRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseLogRepository(db *mongo.Database) repository.ExerciseLogRepository {
	return &mongoExerciseLogRepository{
		collection: db.Collection(exerciseLogCollectionName),
	}
}

func (r *mongoExerciseLogRepository) CreateMany(ctx context.Context, logs []domain.ExerciseLog) error {
	if len(logs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(logs))
	for i := range logs {
		logs[i].ID = primitive.NewObjectID()
		docs[i] = logs[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoExerciseLogRepository) ListBetween(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLog, error) {
	filter := bson.M{"userId": userID, "performedAt": bson.M{"$gte": from, "$lt": to}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "performedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.ExerciseLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.ExerciseLog{}
	}
	return logs, nil
}

func (r *mongoExerciseLogRepository) DistinctExercisesBefore(ctx context.Context, userID primitive.ObjectID, t time.Time) ([]primitive.ObjectID, error) {
	filter := bson.M{"userId": userID, "performedAt": bson.M{"$lt": t}}
	values, err := r.collection.Distinct(ctx, "exerciseId", filter)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func EnsureExerciseLogIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "performedAt", Value: 1}}},
		{Keys: bson.D{{Key: "workoutId", Value: 1}}},
	})
}
