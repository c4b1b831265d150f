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

const weeklyStatCollectionName = "weekly_stats"

type mongoWeeklyStatRepository struct {
	collection *mongo.Collection
}

func NewMongoWeeklyStatRepository(db *mongo.Database) repository.WeeklyStatRepository {
	return &mongoWeeklyStatRepository{collection: db.Collection(weeklyStatCollectionName)}
}

func (r *mongoWeeklyStatRepository) Get(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyStat, error) {
	var stat domain.WeeklyStat
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "weekStart": weekStart.UTC()}).Decode(&stat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &stat, nil
}

// upsert applies set and inc to the week's row; fresh rows get the defaults
// for fields that set does not touch.
func (r *mongoWeeklyStatRepository) upsert(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, set, inc bson.M) error {
	onInsert := bson.M{}
	defaults := bson.M{"workoutsCompleted": 0, "punishmentActive": true, "questsCompleted": 0}
	for k, v := range defaults {
		if _, ok := set[k]; !ok {
			onInsert[k] = v
		}
	}
	update := bson.M{"$setOnInsert": onInsert}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	filter := bson.M{"userId": userID, "weekStart": weekStart.UTC()}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoWeeklyStatRepository) RecordWorkouts(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, workouts int, punishment bool, xp int) error {
	return r.upsert(ctx, userID, weekStart,
		bson.M{"workoutsCompleted": workouts, "punishmentActive": punishment},
		bson.M{"xpEarned": xp},
	)
}

func (r *mongoWeeklyStatRepository) AddXP(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, xp int) error {
	return r.upsert(ctx, userID, weekStart, bson.M{}, bson.M{"xpEarned": xp})
}

func (r *mongoWeeklyStatRepository) SetQuestsCompleted(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, quests int, xp int) error {
	return r.upsert(ctx, userID, weekStart, bson.M{"questsCompleted": quests}, bson.M{"xpEarned": xp})
}

// TotalXP sums xpEarned over every week of the user.
func (r *mongoWeeklyStatRepository) TotalXP(ctx context.Context, userID primitive.ObjectID) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$xpEarned"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func EnsureWeeklyStatIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "weekStart", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
