package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/playmeeple/meeplehub/models"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByGame(ctx context.Context, gameID string, limit, offset int) ([]models.Review, error)
	Delete(ctx context.Context, id string) error
	// AverageRatingByGame runs the aggregation pipeline behind the
	// historical-rating collaborator of the difficulty index. The boolean is
	// false when the game has no reviews.
	AverageRatingByGame(ctx context.Context, gameID string) (float64, bool, error)
}

type mongoReviewRepository struct {
	coll *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{coll: db.Collection("reviews")}
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	_, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *mongoReviewRepository) ListByGame(ctx context.Context, gameID string, limit, offset int) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode review list: %w", err)
	}
	return reviews, nil
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *mongoReviewRepository) AverageRatingByGame(ctx context.Context, gameID string) (float64, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"game_id": gameID}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$game_id",
			"avg": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, fmt.Errorf("failed to aggregate review ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, false, fmt.Errorf("failed to decode rating aggregation: %w", err)
	}
	if len(results) == 0 {
		return 0, false, nil
	}
	return results[0].Avg, true, nil
}
