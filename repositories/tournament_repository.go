package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/playmeeple/meeplehub/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentFull     = errors.New("tournament has no remaining capacity")
	ErrTournamentConflict = errors.New("tournament id conflict")
)

// ListTournamentsFilter narrows List results; nil fields are ignored.
type ListTournamentsFilter struct {
	GameID        *string
	Administrator *string
	Visibility    *models.TournamentVisibility
	Limit         int
	Offset        int
}

// TournamentPatch carries the updatable business fields; only non-nil fields
// are written. Winner and the allowed list are deliberately absent: the first
// goes through SetWinner, the second is fixed at creation.
type TournamentPatch struct {
	Name            *string
	Type            *string
	TypeDescription *string
	Location        *string
	StartingTime    *time.Time
	MinParticipants *int
	MaxParticipants *int
	Options         *[]models.TournamentOption
}

// TournamentRepository is the document-store adapter for tournaments. The
// conditional increment is the single concurrency-sensitive write of the
// whole system: it re-checks capacity inside the store so that concurrent
// registrations cannot oversell a tournament.
type TournamentRepository interface {
	Insert(ctx context.Context, t *models.Tournament) error
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	ApplyPatch(ctx context.Context, id string, patch TournamentPatch) error
	SetWinner(ctx context.Context, id string, winner string) error
	Delete(ctx context.Context, id string) error
	TryIncrementParticipants(ctx context.Context, id string) error
	DecrementParticipants(ctx context.Context, id string) error
	SetParticipantCount(ctx context.Context, id string, count int) error
}

type mongoTournamentRepository struct {
	coll *mongo.Collection
}

func NewMongoTournamentRepository(db *mongo.Database) TournamentRepository {
	return &mongoTournamentRepository{coll: db.Collection("tournaments")}
}

func (r *mongoTournamentRepository) Insert(ctx context.Context, t *models.Tournament) error {
	_, err := r.coll.InsertOne(ctx, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *mongoTournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	return t, nil
}

func (r *mongoTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := bson.M{}
	if filter.GameID != nil {
		query["game.id"] = *filter.GameID
	}
	if filter.Administrator != nil {
		query["administrator"] = *filter.Administrator
	}
	if filter.Visibility != nil {
		query["visibility"] = *filter.Visibility
	}

	opts := options.Find().SetSort(bson.D{{Key: "starting_time", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer cursor.Close(ctx)

	tournaments := make([]models.Tournament, 0)
	if err = cursor.All(ctx, &tournaments); err != nil {
		return nil, fmt.Errorf("failed to decode tournament list: %w", err)
	}
	return tournaments, nil
}

func (r *mongoTournamentRepository) ApplyPatch(ctx context.Context, id string, patch TournamentPatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.TypeDescription != nil {
		set["type_description"] = *patch.TypeDescription
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.StartingTime != nil {
		set["starting_time"] = *patch.StartingTime
	}
	if patch.MinParticipants != nil {
		set["min_participants"] = *patch.MinParticipants
	}
	if patch.MaxParticipants != nil {
		set["max_participants"] = *patch.MaxParticipants
	}
	if patch.Options != nil {
		set["options"] = *patch.Options
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to patch tournament: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// SetWinner is a plain idempotent $set; retries converge to the same state.
func (r *mongoTournamentRepository) SetWinner(ctx context.Context, id string, winner string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"winner": winner}})
	if err != nil {
		return fmt.Errorf("failed to set tournament winner: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *mongoTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// TryIncrementParticipants performs the compare-and-swap increment: the
// filter repeats the capacity predicate, so the counter only moves while
// num_participants < max_participants at the moment the store applies it.
func (r *mongoTournamentRepository) TryIncrementParticipants(ctx context.Context, id string) error {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$num_participants", "$max_participants"}},
	}
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"num_participants": 1}}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to increment participant counter: %w", err)
	}
	// The filter matched nothing: either the tournament is gone or it is full.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return findErr
	}
	return ErrTournamentFull
}

// DecrementParticipants is floored at zero so that a retried compensation
// can never drive the counter negative.
func (r *mongoTournamentRepository) DecrementParticipants(ctx context.Context, id string) error {
	filter := bson.M{"_id": id, "num_participants": bson.M{"$gt": 0}}
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"num_participants": -1}}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to decrement participant counter: %w", err)
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return findErr
	}
	// Counter already at zero; nothing to decrement.
	return nil
}

// SetParticipantCount overwrites the derived counter with the value
// recomputed from the graph. Used only by reconciliation.
func (r *mongoTournamentRepository) SetParticipantCount(ctx context.Context, id string, count int) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"num_participants": count}})
	if err != nil {
		return fmt.Errorf("failed to set participant counter: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTournamentNotFound
	}
	return nil
}
