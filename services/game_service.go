package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
	"github.com/playmeeple/meeplehub/storage"
)

type GameInput struct {
	Name             string   `json:"name"`
	YearReleased     int      `json:"year_released"`
	ShortDescription string   `json:"short_description"`
	Categories       []string `json:"categories"`
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// GameService handles catalog CRUD and reviews. Game records are mirrored
// into the graph so LIKES edges and game suggestions have nodes to land on.
type GameService struct {
	gameRepo   repositories.GameRepository
	reviewRepo repositories.ReviewRepository
	graphRepo  repositories.GraphRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
	now        func() time.Time
}

func NewGameService(
	gameRepo repositories.GameRepository,
	reviewRepo repositories.ReviewRepository,
	graphRepo repositories.GraphRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		gameRepo:   gameRepo,
		reviewRepo: reviewRepo,
		graphRepo:  graphRepo,
		uploader:   uploader,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *GameService) CreateGame(ctx context.Context, input GameInput) (*models.Game, error) {
	game := &models.Game{
		ID:               uuid.NewString(),
		Name:             input.Name,
		YearReleased:     input.YearReleased,
		ShortDescription: input.ShortDescription,
		Categories:       input.Categories,
		CreatedAt:        s.now(),
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	if err := s.graphRepo.UpsertGame(ctx, game); err != nil {
		if compErr := s.gameRepo.Delete(ctx, game.ID); compErr != nil {
			s.logger.Error("failed to roll back game after node write failure",
				slog.String("game_id", game.ID),
				slog.Any("error", compErr))
		}
		return nil, fmt.Errorf("failed to create game node: %w", err)
	}
	return game, nil
}

func (s *GameService) GetGameByID(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.BoxArtKey != nil {
		url := s.uploader.GetPublicURL(*game.BoxArtKey)
		game.BoxArtURL = &url
	}
	return game, nil
}

func (s *GameService) ListGames(ctx context.Context, limit, offset int) ([]models.Game, error) {
	return s.gameRepo.List(ctx, limit, offset)
}

func (s *GameService) UpdateGame(ctx context.Context, id string, input GameInput) (*models.Game, error) {
	game, err := s.GetGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	game.Name = input.Name
	game.YearReleased = input.YearReleased
	game.ShortDescription = input.ShortDescription
	game.Categories = input.Categories

	if err = s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	if err = s.graphRepo.UpsertGame(ctx, game); err != nil {
		s.logger.Warn("failed to refresh game projection",
			slog.String("game_id", id),
			slog.Any("error", err))
	}
	return game, nil
}

func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	if err := s.graphRepo.DeleteGame(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game node: %w", err)
	}
	if err := s.gameRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// AddReview attaches a rated review; the author/date/content triple is the
// composed Authored value.
func (s *GameService) AddReview(ctx context.Context, gameID, author string, input ReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.GetGameByID(ctx, gameID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:     uuid.NewString(),
		GameID: gameID,
		Rating: input.Rating,
		Authored: models.Authored{
			Author:   author,
			PostedAt: s.now(),
			Content:  input.Content,
		},
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

func (s *GameService) ListReviews(ctx context.Context, gameID string, limit, offset int) ([]models.Review, error) {
	if _, err := s.GetGameByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByGame(ctx, gameID, limit, offset)
}

// UploadBoxArt stores the cover image and records the key on the record.
func (s *GameService) UploadBoxArt(ctx context.Context, gameID, contentType string, reader io.Reader) (string, error) {
	if _, err := s.GetGameByID(ctx, gameID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("boxart/%s", gameID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload box art: %w", err)
	}
	if err = s.gameRepo.UpdateBoxArtKey(ctx, gameID, &result.Key); err != nil {
		return "", fmt.Errorf("failed to record box art key: %w", err)
	}
	return s.uploader.GetPublicURL(result.Key), nil
}
