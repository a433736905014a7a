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

var ErrReconcileTaskNotFound = errors.New("reconcile task not found")

// ReconcileQueueRepository persists the degraded-operation queue. An entry
// means a multi-store write partially succeeded and its compensation failed;
// the background reconciler drains the queue and heals the counters.
type ReconcileQueueRepository interface {
	Enqueue(ctx context.Context, task *models.ReconcileTask) error
	ListPending(ctx context.Context, limit int) ([]models.ReconcileTask, error)
	MarkAttempt(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

type mongoReconcileQueueRepository struct {
	coll *mongo.Collection
}

func NewMongoReconcileQueueRepository(db *mongo.Database) ReconcileQueueRepository {
	return &mongoReconcileQueueRepository{coll: db.Collection("reconcile_queue")}
}

func (r *mongoReconcileQueueRepository) Enqueue(ctx context.Context, task *models.ReconcileTask) error {
	_, err := r.coll.InsertOne(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}
	return nil
}

func (r *mongoReconcileQueueRepository) ListPending(ctx context.Context, limit int) ([]models.ReconcileTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enqueued_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconcile tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]models.ReconcileTask, 0)
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode reconcile tasks: %w", err)
	}
	return tasks, nil
}

func (r *mongoReconcileQueueRepository) MarkAttempt(ctx context.Context, id string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"attempts": 1}})
	if err != nil {
		return fmt.Errorf("failed to mark reconcile attempt: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrReconcileTaskNotFound
	}
	return nil
}

func (r *mongoReconcileQueueRepository) Remove(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to remove reconcile task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrReconcileTaskNotFound
	}
	return nil
}
