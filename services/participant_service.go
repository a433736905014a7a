package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
)

// ParticipantService инкапсулирует регистрацию участников: единственный
// писатель счётчика num_participants.
//
// Ordering rule: on register the document counter moves first and the graph
// edge second; on unregister the graph edge goes first and the counter
// second. A crash between the two writes therefore leaves the counter >=
// true membership during register and <= during unregister — capacity can be
// phantom-used but never oversold.
type ParticipantService struct {
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	graphRepo      repositories.GraphRepository
	queueRepo      repositories.ReconcileQueueRepository
	notifier       EventNotifier
	logger         *slog.Logger
	now            func() time.Time
}

func NewParticipantService(
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	graphRepo repositories.GraphRepository,
	queueRepo repositories.ReconcileQueueRepository,
	notifier EventNotifier,
	logger *slog.Logger,
) *ParticipantService {
	return &ParticipantService{
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		graphRepo:      graphRepo,
		queueRepo:      queueRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

// Register adds a user to a tournament. All validation happens before any
// write; the two writes are counter-increment (CAS) then edge-merge, with a
// compensating decrement if the edge cannot be created.
func (s *ParticipantService) Register(ctx context.Context, tournamentID, username string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to check user %s: %w", username, err)
	}

	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to check tournament %s: %w", tournamentID, err)
	}

	if tournament.Started(s.now()) {
		return ErrRegistrationClosed
	}
	if !tournament.AllowsRegistration(username) {
		return ErrForbiddenOperation
	}
	if tournament.NumParticipants >= tournament.MaxParticipants {
		return ErrTournamentFull
	}

	registered, err := s.graphRepo.HasParticipates(ctx, username, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to check existing registration: %w", err)
	}
	if registered {
		return ErrAlreadyRegistered
	}

	// Document store first: the conditional increment re-checks capacity
	// atomically, so a concurrent registration cannot oversell.
	if err = s.tournamentRepo.TryIncrementParticipants(ctx, tournamentID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentFull):
			return ErrTournamentFull
		}
		return fmt.Errorf("failed to reserve capacity: %w", err)
	}

	// Graph store last. The MERGE reports whether it created the edge; a
	// concurrent duplicate that won the race leaves nothing to create, so the
	// reserved slot is handed back instead of drifting above the edge count.
	created, err := s.graphRepo.CreateParticipates(ctx, username, tournamentID)
	if err != nil {
		if compErr := s.tournamentRepo.DecrementParticipants(ctx, tournamentID); compErr != nil {
			return s.degrade(ctx, tournamentID, models.ReconcileOpRegister, "counter-rollback", compErr)
		}
		return fmt.Errorf("failed to create participation edge: %w", err)
	}
	if !created {
		if compErr := s.tournamentRepo.DecrementParticipants(ctx, tournamentID); compErr != nil {
			return s.degrade(ctx, tournamentID, models.ReconcileOpRegister, "counter-rollback", compErr)
		}
		return ErrAlreadyRegistered
	}

	// Profile counter is a collaborator concern, not part of the consistency
	// invariant; a failure here is logged, not compensated.
	if err = s.userRepo.IncrementParticipated(ctx, username, 1); err != nil {
		s.logger.Warn("failed to bump participated counter",
			slog.String("username", username),
			slog.String("tournament_id", tournamentID),
			slog.Any("error", err))
	}

	s.notifier.NotifyTournament(tournamentID, "PARTICIPANT_REGISTERED", map[string]string{"username": username})
	return nil
}

// Unregister removes a user from a tournament: edge first, counter second,
// with a compensating edge re-merge if the decrement fails.
func (s *ParticipantService) Unregister(ctx context.Context, tournamentID, username string) error {
	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to check tournament %s: %w", tournamentID, err)
	}

	// The winner must stay a participant, and the roster freezes at start.
	if tournament.Winner != nil && *tournament.Winner == username {
		return ErrWinnerCannotUnregister
	}
	if tournament.Started(s.now()) {
		return ErrRegistrationClosed
	}

	registered, err := s.graphRepo.HasParticipates(ctx, username, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to check existing registration: %w", err)
	}
	if !registered {
		return ErrNotRegistered
	}

	// Graph store first.
	if err = s.graphRepo.DeleteParticipates(ctx, username, tournamentID); err != nil {
		return fmt.Errorf("failed to remove participation edge: %w", err)
	}

	if err = s.tournamentRepo.DecrementParticipants(ctx, tournamentID); err != nil {
		// Put the edge back; MERGE makes the retry safe.
		if _, compErr := s.graphRepo.CreateParticipates(ctx, username, tournamentID); compErr != nil {
			return s.degrade(ctx, tournamentID, models.ReconcileOpUnregister, "edge-restore", compErr)
		}
		return fmt.Errorf("failed to release capacity: %w", err)
	}

	if err = s.userRepo.IncrementParticipated(ctx, username, -1); err != nil {
		s.logger.Warn("failed to drop participated counter",
			slog.String("username", username),
			slog.String("tournament_id", tournamentID),
			slog.Any("error", err))
	}

	s.notifier.NotifyTournament(tournamentID, "PARTICIPANT_UNREGISTERED", map[string]string{"username": username})
	return nil
}

// degrade queues the tournament for reconciliation and surfaces the partial
// failure distinctly, so callers never mistake it for success or a clean
// failure.
func (s *ParticipantService) degrade(ctx context.Context, tournamentID, op, stage string, cause error) error {
	task := &models.ReconcileTask{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Op:           op,
		Stage:        stage,
		EnqueuedAt:   s.now(),
	}
	if enqueueErr := s.queueRepo.Enqueue(ctx, task); enqueueErr != nil {
		s.logger.Error("failed to enqueue reconcile task",
			slog.String("tournament_id", tournamentID),
			slog.String("op", op),
			slog.String("stage", stage),
			slog.Any("error", enqueueErr))
	} else {
		s.logger.Warn("operation degraded, reconcile task queued",
			slog.String("tournament_id", tournamentID),
			slog.String("op", op),
			slog.String("stage", stage))
	}
	return &DegradedError{TournamentID: tournamentID, Op: op, Stage: stage, Err: cause}
}
