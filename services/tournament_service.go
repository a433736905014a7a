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

// EventNotifier pushes tournament events to live subscribers. The realtime
// hub implements it; tests use a no-op.
type EventNotifier interface {
	NotifyTournament(tournamentID, event string, payload any)
}

type CreateTournamentInput struct {
	GameID          string                      `json:"game_id"`
	Name            string                      `json:"name"`
	Type            string                      `json:"type"`
	TypeDescription string                      `json:"type_description"`
	Location        *string                     `json:"location"`
	StartingTime    time.Time                   `json:"starting_time"`
	MinParticipants int                         `json:"min_participants"`
	MaxParticipants int                         `json:"max_participants"`
	Visibility      models.TournamentVisibility `json:"visibility"`
	Options         []models.TournamentOption   `json:"options"`
	Allowed         []string                    `json:"allowed"`
}

// TournamentService управляет жизненным циклом турнира: каждая операция —
// это сага из упорядоченных записей в оба хранилища с компенсациями.
type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	userRepo       repositories.UserRepository
	graphRepo      repositories.GraphRepository
	queueRepo      repositories.ReconcileQueueRepository
	notifier       EventNotifier
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	graphRepo repositories.GraphRepository,
	queueRepo repositories.ReconcileQueueRepository,
	notifier EventNotifier,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		graphRepo:      graphRepo,
		queueRepo:      queueRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TournamentService) validateCreate(input CreateTournamentInput) error {
	switch input.Visibility {
	case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityInvite:
	default:
		return ErrInvalidVisibility
	}
	if input.MaxParticipants <= 0 || input.MinParticipants < 0 || input.MinParticipants > input.MaxParticipants {
		return ErrInvalidCapacity
	}
	if !input.StartingTime.After(s.now()) {
		return ErrStartingTimePast
	}
	return nil
}

// CreateTournament validates the game and administrator against both stores,
// then writes graph node + CREATES edge, the document record, and the
// administrator's created-counter, in that order. Any failure after the
// graph write compensates by deleting the graph node.
func (s *TournamentService) CreateTournament(ctx context.Context, administrator string, input CreateTournamentInput) (*models.Tournament, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, administrator); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check administrator: %w", err)
	}
	adminInGraph, err := s.graphRepo.UserExists(ctx, administrator)
	if err != nil {
		return nil, fmt.Errorf("failed to check administrator node: %w", err)
	}
	if !adminInGraph {
		return nil, ErrUserNotFound
	}

	game, err := s.gameRepo.FindByID(ctx, input.GameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to check game: %w", err)
	}
	gameInGraph, err := s.graphRepo.GameExists(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check game node: %w", err)
	}
	if !gameInGraph {
		return nil, ErrGameNotFound
	}

	// PRIVATE: наполняем allowed только известными пользователями, без
	// частичного создания.
	allowed := input.Allowed
	if input.Visibility == models.VisibilityPrivate {
		unknown, err := s.userRepo.FilterUnknown(ctx, allowed)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve allowed list: %w", err)
		}
		if len(unknown) > 0 {
			return nil, &UnknownAllowedError{Usernames: unknown}
		}
	} else {
		allowed = nil
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Type:            input.Type,
		TypeDescription: input.TypeDescription,
		Game:            game.Snapshot(),
		Location:        input.Location,
		StartingTime:    input.StartingTime,
		MinParticipants: input.MinParticipants,
		MaxParticipants: input.MaxParticipants,
		NumParticipants: 0,
		Administrator:   administrator,
		Visibility:      input.Visibility,
		Options:         input.Options,
		Allowed:         allowed,
		CreatedAt:       s.now(),
	}

	if err = s.graphRepo.UpsertTournament(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament node: %w", err)
	}
	if err = s.graphRepo.CreateCreates(ctx, administrator, tournament.ID); err != nil {
		s.compensateGraphNode(ctx, tournament.ID, models.ReconcileOpCreate, "creates-edge")
		return nil, fmt.Errorf("failed to create CREATES edge: %w", err)
	}

	if err = s.tournamentRepo.Insert(ctx, tournament); err != nil {
		s.compensateGraphNode(ctx, tournament.ID, models.ReconcileOpCreate, "document-insert")
		return nil, fmt.Errorf("failed to insert tournament document: %w", err)
	}

	if err = s.userRepo.IncrementCreated(ctx, administrator, 1); err != nil {
		if delErr := s.tournamentRepo.Delete(ctx, tournament.ID); delErr != nil {
			return nil, s.degrade(ctx, tournament.ID, models.ReconcileOpCreate, "created-counter", delErr)
		}
		s.compensateGraphNode(ctx, tournament.ID, models.ReconcileOpCreate, "created-counter")
		return nil, fmt.Errorf("failed to bump created counter: %w", err)
	}

	s.logger.Info("tournament created",
		slog.String("tournament_id", tournament.ID),
		slog.String("administrator", administrator),
		slog.String("game_id", game.ID))
	return tournament, nil
}

func (s *TournamentService) GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

// UpdateTournament applies a field-level patch; only the administrator may
// mutate, only non-nil fields overwrite, and the winner goes through
// SelectWinner instead. The graph projection is refreshed afterwards.
func (s *TournamentService) UpdateTournament(ctx context.Context, id, requester string, patch repositories.TournamentPatch) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Administrator != requester {
		return nil, ErrForbiddenOperation
	}

	if patch.MinParticipants != nil || patch.MaxParticipants != nil {
		minP := tournament.MinParticipants
		maxP := tournament.MaxParticipants
		if patch.MinParticipants != nil {
			minP = *patch.MinParticipants
		}
		if patch.MaxParticipants != nil {
			maxP = *patch.MaxParticipants
		}
		if maxP <= 0 || minP < 0 || minP > maxP || maxP < tournament.NumParticipants {
			return nil, ErrInvalidCapacity
		}
	}

	if err = s.tournamentRepo.ApplyPatch(ctx, id, patch); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to patch tournament: %w", err)
	}

	updated, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.graphRepo.UpsertTournament(ctx, updated); err != nil {
		// Projection refresh is best-effort; the node is rebuildable.
		s.logger.Warn("failed to refresh tournament projection",
			slog.String("tournament_id", id),
			slog.Any("error", err))
	}
	return updated, nil
}

// SelectWinner sets the winner. The three writes — document update, WON
// edge, won-counter — are each idempotent, and the counter is guarded by the
// prior absence of the WON edge, so a retry after partial failure converges
// without double-counting.
func (s *TournamentService) SelectWinner(ctx context.Context, id, winner, requester string) error {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Administrator != requester {
		return ErrForbiddenOperation
	}
	if tournament.Winner != nil && *tournament.Winner != winner {
		return ErrWinnerAlreadyChosen
	}

	participates, err := s.graphRepo.HasParticipates(ctx, winner, id)
	if err != nil {
		return fmt.Errorf("failed to check winner participation: %w", err)
	}
	if !participates {
		return ErrWinnerNotParticipant
	}

	alreadyWon, err := s.graphRepo.HasWon(ctx, winner, id)
	if err != nil {
		return fmt.Errorf("failed to check WON edge: %w", err)
	}

	if err = s.tournamentRepo.SetWinner(ctx, id, winner); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to set winner: %w", err)
	}
	if err = s.graphRepo.CreateWon(ctx, winner, id); err != nil {
		return fmt.Errorf("failed to create WON edge: %w", err)
	}
	if !alreadyWon {
		if err = s.userRepo.IncrementWon(ctx, winner, 1); err != nil {
			return fmt.Errorf("failed to bump won counter: %w", err)
		}
	}

	s.notifier.NotifyTournament(id, "WINNER_SELECTED", map[string]string{"winner": winner})
	s.logger.Info("winner selected",
		slog.String("tournament_id", id),
		slog.String("winner", winner))
	return nil
}

// DeleteTournament detaches every edge touching the node, deletes the node
// and the document, and walks back the administrator's and participants'
// counters exactly once. Deletion is irreversible; failures after the graph
// delete degrade instead of compensating.
func (s *TournamentService) DeleteTournament(ctx context.Context, id, requester string) error {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Administrator != requester {
		return ErrForbiddenOperation
	}

	participants, err := s.graphRepo.ListParticipants(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}

	if err = s.graphRepo.DeleteTournament(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament node: %w", err)
	}
	if err = s.tournamentRepo.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrTournamentNotFound) {
		return s.degrade(ctx, id, models.ReconcileOpDelete, "document-delete", err)
	}

	if err = s.userRepo.IncrementCreated(ctx, tournament.Administrator, -1); err != nil {
		s.logger.Warn("failed to drop created counter",
			slog.String("username", tournament.Administrator),
			slog.Any("error", err))
	}
	for _, participant := range participants {
		if err = s.userRepo.IncrementParticipated(ctx, participant, -1); err != nil {
			s.logger.Warn("failed to drop participated counter",
				slog.String("username", participant),
				slog.Any("error", err))
		}
	}

	s.notifier.NotifyTournament(id, "TOURNAMENT_DELETED", nil)
	s.logger.Info("tournament deleted",
		slog.String("tournament_id", id),
		slog.Int("participants", len(participants)))
	return nil
}

// compensateGraphNode rolls back the graph side of a failed creation. If the
// rollback itself fails the tournament is queued for reconciliation.
func (s *TournamentService) compensateGraphNode(ctx context.Context, tournamentID, op, stage string) {
	if err := s.graphRepo.DeleteTournament(ctx, tournamentID); err != nil {
		if degraded := s.degrade(ctx, tournamentID, op, stage, err); degraded != nil {
			s.logger.Error("graph compensation failed",
				slog.String("tournament_id", tournamentID),
				slog.String("stage", stage),
				slog.Any("error", err))
		}
	}
}

func (s *TournamentService) degrade(ctx context.Context, tournamentID, op, stage string, cause error) error {
	task := &models.ReconcileTask{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Op:           op,
		Stage:        stage,
		EnqueuedAt:   s.now(),
	}
	if err := s.queueRepo.Enqueue(ctx, task); err != nil {
		s.logger.Error("failed to enqueue reconcile task",
			slog.String("tournament_id", tournamentID),
			slog.String("op", op),
			slog.String("stage", stage),
			slog.Any("error", err))
	}
	return &DegradedError{TournamentID: tournamentID, Op: op, Stage: stage, Err: cause}
}
