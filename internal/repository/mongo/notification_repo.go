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

const notificationCollectionName = "sent_notifications"

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(notificationCollectionName)}
}

func (r *mongoNotificationRepository) Exists(ctx context.Context, userID primitive.ObjectID, date string, kind domain.NotificationKind) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"userId": userID, "date": date, "kind": kind},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSent upserts the marker; the unique index turns a racing insert into a duplicate key error, which is fine.
func (r *mongoNotificationRepository) MarkSent(ctx context.Context, userID primitive.ObjectID, date string, kind domain.NotificationKind, at time.Time) error {
	filter := bson.M{"userId": userID, "date": date, "kind": kind}
	update := bson.M{"$setOnInsert": bson.M{"sentAt": at.UTC()}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
