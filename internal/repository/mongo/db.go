package mongo

import (
	"alcyxob/getsfit/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories builds every Mongo-backed repository on db.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Users:         NewMongoUserRepository(db),
		Exercises:     NewMongoExerciseRepository(db),
		Preferences:   NewMongoPreferenceRepository(db),
		Injuries:      NewMongoInjuryRepository(db),
		Workouts:      NewMongoWorkoutRepository(db),
		ExerciseLogs:  NewMongoExerciseLogRepository(db),
		WeeklyStats:   NewMongoWeeklyStatRepository(db),
		Notifications: NewMongoNotificationRepository(db),
		BodyLogs:      NewMongoBodyLogRepository(db),
		Achievements:  NewMongoAchievementRepository(db),
		FitbitDays:    NewMongoFitbitDailyRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged, not returned.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName))
	EnsurePreferenceIndexes(ctx, db.Collection(preferenceCollectionName))
	EnsureInjuryIndexes(ctx, db.Collection(injuryCollectionName))
	EnsureWorkoutIndexes(ctx, db.Collection(workoutCollectionName))
	EnsureExerciseLogIndexes(ctx, db.Collection(exerciseLogCollectionName))
	EnsureWeeklyStatIndexes(ctx, db.Collection(weeklyStatCollectionName))
	EnsureNotificationIndexes(ctx, db.Collection(notificationCollectionName))
	EnsureBodyLogIndexes(ctx, db)
	EnsureAchievementIndexes(ctx, db.Collection(achievementCollectionName))
	EnsureFitbitDailyIndexes(ctx, db.Collection(fitbitDailyCollectionName))
}
