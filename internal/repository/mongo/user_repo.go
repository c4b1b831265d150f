package mongo

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"telegramChatId": chatID})
}

// List returns every user, oldest account first. Batch jobs iterate this.
func (r *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (r *mongoUserRepository) updateSet(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetCurrentWeight(ctx context.Context, id primitive.ObjectID, weightKg float64) error {
	return r.updateSet(ctx, id, bson.M{"currentWeight": weightKg})
}

func (r *mongoUserRepository) UpdateGoals(ctx context.Context, id primitive.ObjectID, startingWeight, targetWeight *float64) error {
	set := bson.M{}
	if startingWeight != nil {
		set["startingWeight"] = *startingWeight
		set["goalStartedAt"] = time.Now().UTC()
	}
	if targetWeight != nil {
		set["targetWeight"] = *targetWeight
	}
	return r.updateSet(ctx, id, set)
}

func (r *mongoUserRepository) SetTelegramLinkCode(ctx context.Context, id primitive.ObjectID, code string) error {
	return r.updateSet(ctx, id, bson.M{"telegramLinkCode": code})
}

// LinkTelegramByCode atomically swaps the one-time code for the chat id.
func (r *mongoUserRepository) LinkTelegramByCode(ctx context.Context, code string, chatID int64) (*domain.User, error) {
	if code == "" {
		return nil, repository.ErrNotFound
	}
	filter := bson.M{"telegramLinkCode": code}
	update := bson.M{
		"$set":   bson.M{"telegramChatId": chatID, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"telegramLinkCode": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) SetFitbitTokens(ctx context.Context, id primitive.ObjectID, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.updateSet(ctx, id, bson.M{
		"fitbitAccessToken":    accessToken,
		"fitbitRefreshToken":   refreshToken,
		"fitbitTokenExpiresAt": expiresAt.UTC(),
	})
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "telegramChatId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "telegramLinkCode", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	createIndexes(ctx, collection, indexes)
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
