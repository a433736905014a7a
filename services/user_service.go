package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
	"github.com/playmeeple/meeplehub/storage"
)

const minPasswordLength = 8

type SignUpInput struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UserService управляет профилями и социальными связями. Профиль живёт в
// документном хранилище, связи FOLLOWS/LIKES — в графе; запись профиля и
// узла графа парная, с компенсацией.
type UserService struct {
	userRepo  repositories.UserRepository
	gameRepo  repositories.GameRepository
	graphRepo repositories.GraphRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
	now       func() time.Time
}

func NewUserService(
	userRepo repositories.UserRepository,
	gameRepo repositories.GameRepository,
	graphRepo repositories.GraphRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		gameRepo:  gameRepo,
		graphRepo: graphRepo,
		uploader:  uploader,
		logger:    logger,
		now:       time.Now,
	}
}

// SignUp creates the profile document and the mirrored graph node. A failed
// node write compensates by removing the profile, so the two stores never
// disagree about who exists.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    s.now(),
	}

	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err = s.graphRepo.UpsertUser(ctx, user.Username); err != nil {
		if compErr := s.userRepo.Delete(ctx, user.Username); compErr != nil {
			s.logger.Error("failed to roll back profile after node write failure",
				slog.String("username", user.Username),
				slog.Any("error", compErr))
		}
		return nil, fmt.Errorf("failed to create user node: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	if user.AvatarKey != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
	return user, nil
}

// Follow creates the FOLLOWS edge. Both endpoints are validated against the
// document store first; the MERGE write itself is idempotent.
func (s *UserService) Follow(ctx context.Context, follower, followee string) error {
	if follower == followee {
		return ErrSelfFollow
	}
	for _, username := range []string{follower, followee} {
		if _, err := s.userRepo.FindByUsername(ctx, username); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to check user %s: %w", username, err)
		}
	}
	return s.graphRepo.CreateFollows(ctx, follower, followee)
}

func (s *UserService) Unfollow(ctx context.Context, follower, followee string) error {
	return s.graphRepo.DeleteFollows(ctx, follower, followee)
}

// Like creates the LIKES edge towards a catalog game.
func (s *UserService) Like(ctx context.Context, username, gameID string) error {
	if _, err := s.gameRepo.FindByID(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to check game: %w", err)
	}
	return s.graphRepo.CreateLikes(ctx, username, gameID)
}

func (s *UserService) Unlike(ctx context.Context, username, gameID string) error {
	return s.graphRepo.DeleteLikes(ctx, username, gameID)
}

// UploadAvatar stores the image in object storage and records the key on the
// profile.
func (s *UserService) UploadAvatar(ctx context.Context, username, contentType string, reader io.Reader) (string, error) {
	if _, err := s.userRepo.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	key := fmt.Sprintf("avatars/%s", username)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err = s.userRepo.UpdateAvatarKey(ctx, username, &result.Key); err != nil {
		return "", fmt.Errorf("failed to record avatar key: %w", err)
	}
	return s.uploader.GetPublicURL(result.Key), nil
}
