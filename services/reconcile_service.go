package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/playmeeple/meeplehub/repositories"
)

// maxReconcileBatch bounds one scheduler pass over the degraded queue.
const maxReconcileBatch = 100

// ReconcileService heals counter drift: the graph's PARTICIPATES edge count
// is the authoritative membership, the document counter is rewritten to
// match it.
type ReconcileService struct {
	tournamentRepo repositories.TournamentRepository
	graphRepo      repositories.GraphRepository
	queueRepo      repositories.ReconcileQueueRepository
	logger         *slog.Logger
}

func NewReconcileService(
	tournamentRepo repositories.TournamentRepository,
	graphRepo repositories.GraphRepository,
	queueRepo repositories.ReconcileQueueRepository,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		tournamentRepo: tournamentRepo,
		graphRepo:      graphRepo,
		queueRepo:      queueRepo,
		logger:         logger,
	}
}

// Reconcile recomputes num_participants from the true graph edge count. A
// missing document is not an error: the tournament was deleted and there is
// nothing left to heal.
func (s *ReconcileService) Reconcile(ctx context.Context, tournamentID string) error {
	count, err := s.graphRepo.CountParticipants(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to count graph participants: %w", err)
	}

	err = s.tournamentRepo.SetParticipantCount(ctx, tournamentID, count)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil
		}
		return fmt.Errorf("failed to write reconciled counter: %w", err)
	}

	s.logger.Info("tournament reconciled",
		slog.String("tournament_id", tournamentID),
		slog.Int("num_participants", count))
	return nil
}

// RunPending drains the degraded-operation queue. Tasks are retried on the
// next pass if healing fails; attempts are tracked for operators.
func (s *ReconcileService) RunPending(ctx context.Context) error {
	tasks, err := s.queueRepo.ListPending(ctx, maxReconcileBatch)
	if err != nil {
		return fmt.Errorf("failed to list reconcile tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, task := range tasks {
		g.Go(func() error {
			if err := s.queueRepo.MarkAttempt(gctx, task.ID); err != nil {
				s.logger.Warn("failed to mark reconcile attempt",
					slog.String("task_id", task.ID),
					slog.Any("error", err))
			}
			if err := s.Reconcile(gctx, task.TournamentID); err != nil {
				s.logger.Error("reconcile task failed",
					slog.String("task_id", task.ID),
					slog.String("tournament_id", task.TournamentID),
					slog.String("op", task.Op),
					slog.String("stage", task.Stage),
					slog.Any("error", err))
				return nil // keep the task queued, keep draining
			}
			if err := s.queueRepo.Remove(gctx, task.ID); err != nil {
				s.logger.Warn("failed to remove reconcile task",
					slog.String("task_id", task.ID),
					slog.Any("error", err))
			}
			return nil
		})
	}
	return g.Wait()
}
