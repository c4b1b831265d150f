package mongo

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	weightLogCollectionName = "weight_logs"
	waistLogCollectionName  = "waist_logs"
)

type mongoBodyLogRepository struct {
	weights *mongo.Collection
	waists  *mongo.Collection
}

// ObjectIDs grow with insertion, so _id breaks ties between logs sharing a timestamp.
var newestFirst = bson.D{{Key: "loggedAt", Value: -1}, {Key: "_id", Value: -1}}

func NewMongoBodyLogRepository(db *mongo.Database) repository.BodyLogRepository {
	return &mongoBodyLogRepository{
		weights: db.Collection(weightLogCollectionName),
		waists:  db.Collection(waistLogCollectionName),
	}
}

func (r *mongoBodyLogRepository) CreateWeight(ctx context.Context, log *domain.WeightLog) error {
	log.ID = primitive.NewObjectID()
	_, err := r.weights.InsertOne(ctx, log)
	return err
}

func (r *mongoBodyLogRepository) CreateWaist(ctx context.Context, log *domain.WaistLog) error {
	log.ID = primitive.NewObjectID()
	_, err := r.waists.InsertOne(ctx, log)
	return err
}

func (r *mongoBodyLogRepository) ListWeights(ctx context.Context, userID primitive.ObjectID, since time.Time, limit int64) ([]domain.WeightLog, error) {
	// Newest first so the limit keeps the latest logs, then flip to oldest first.
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.weights.Find(ctx, bson.M{"userId": userID, "loggedAt": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.WeightLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

func (r *mongoBodyLogRepository) ListWaists(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WaistLog, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.waists.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.WaistLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mongoBodyLogRepository) CountWeightsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return r.weights.CountDocuments(ctx, bson.M{"userId": userID, "loggedAt": bson.M{"$gte": since}})
}

func (r *mongoBodyLogRepository) CountWaistsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return r.waists.CountDocuments(ctx, bson.M{"userId": userID, "loggedAt": bson.M{"$gte": since}})
}

func EnsureBodyLogIndexes(ctx context.Context, db *mongo.Database) {
	for _, name := range []string{weightLogCollectionName, waistLogCollectionName} {
		createIndexes(ctx, db.Collection(name), []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "loggedAt", Value: -1}}},
		})
	}
}
