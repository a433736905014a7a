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

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameConflict = errors.New("game id conflict")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	FindByID(ctx context.Context, id string) (*models.Game, error)
	List(ctx context.Context, limit, offset int) ([]models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	UpdateBoxArtKey(ctx context.Context, id string, boxArtKey *string) error
	Delete(ctx context.Context, id string) error
}

type mongoGameRepository struct {
	coll *mongo.Collection
}

func NewMongoGameRepository(db *mongo.Database) GameRepository {
	return &mongoGameRepository{coll: db.Collection("games")}
}

func (r *mongoGameRepository) Create(ctx context.Context, game *models.Game) error {
	_, err := r.coll.InsertOne(ctx, game)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrGameConflict
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *mongoGameRepository) FindByID(ctx context.Context, id string) (*models.Game, error) {
	game := &models.Game{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	return game, nil
}

func (r *mongoGameRepository) List(ctx context.Context, limit, offset int) ([]models.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer cursor.Close(ctx)

	games := make([]models.Game, 0)
	if err = cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode game list: %w", err)
	}
	return games, nil
}

func (r *mongoGameRepository) Update(ctx context.Context, game *models.Game) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": game.ID}, game)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *mongoGameRepository) UpdateBoxArtKey(ctx context.Context, id string, boxArtKey *string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"box_art_key": boxArtKey}})
	if err != nil {
		return fmt.Errorf("failed to update game box art key: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *mongoGameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}
