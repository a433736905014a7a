package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/playmeeple/meeplehub/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserConflict = errors.New("username is already taken")
)

// UserRepository is the document-store adapter for profiles. The three
// Increment methods implement the profile-counter contract consumed by the
// tournament lifecycle; deltas may be negative.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateAvatarKey(ctx context.Context, username string, avatarKey *string) error
	FilterUnknown(ctx context.Context, usernames []string) ([]string, error)
	IncrementCreated(ctx context.Context, username string, delta int) error
	IncrementParticipated(ctx context.Context, username string, delta int) error
	IncrementWon(ctx context.Context, username string, delta int) error
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection("users")}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, username string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": username})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.coll.FindOne(ctx, bson.M{"_id": username}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.Username}, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) UpdateAvatarKey(ctx context.Context, username string, avatarKey *string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": username}, bson.M{"$set": bson.M{"avatar_key": avatarKey}})
	if err != nil {
		return fmt.Errorf("failed to update user avatar key: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FilterUnknown returns the subset of usernames that have no profile record,
// preserving input order. Used to validate a PRIVATE allowed list up front.
func (r *mongoUserRepository) FilterUnknown(ctx context.Context, usernames []string) ([]string, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": usernames}})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve usernames: %w", err)
	}
	defer cursor.Close(ctx)

	var found []struct {
		Username string `bson:"_id"`
	}
	if err = cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode username lookup: %w", err)
	}

	known := make(map[string]struct{}, len(found))
	for _, f := range found {
		known[f.Username] = struct{}{}
	}

	var unknown []string
	for _, username := range usernames {
		if _, ok := known[username]; !ok {
			unknown = append(unknown, username)
		}
	}
	return unknown, nil
}

func (r *mongoUserRepository) IncrementCreated(ctx context.Context, username string, delta int) error {
	return r.incrementCounter(ctx, username, "tournaments_created", delta)
}

func (r *mongoUserRepository) IncrementParticipated(ctx context.Context, username string, delta int) error {
	return r.incrementCounter(ctx, username, "tournaments_participated", delta)
}

func (r *mongoUserRepository) IncrementWon(ctx context.Context, username string, delta int) error {
	return r.incrementCounter(ctx, username, "tournaments_won", delta)
}

func (r *mongoUserRepository) incrementCounter(ctx context.Context, username, field string, delta int) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": username}, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("failed to increment %s for %s: %w", field, username, err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
