package services

import (
	"context"
	"fmt"

	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
)

// suggestionLimit caps every suggestion list. The cap is a fixed design
// choice; callers cannot page past it.
const suggestionLimit = 20

// SuggestionService runs the 2-hop traversal patterns over the social graph.
// All queries are read-only and tolerate stale (pre-reconciliation) state;
// an unknown requester fails with ErrUserNotFound so "no suggestions" and
// "no such user" stay distinguishable.
type SuggestionService struct {
	graphRepo repositories.GraphRepository
}

func NewSuggestionService(graphRepo repositories.GraphRepository) *SuggestionService {
	return &SuggestionService{graphRepo: graphRepo}
}

func (s *SuggestionService) requireUser(ctx context.Context, username string) error {
	exists, err := s.graphRepo.UserExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check user node: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// SuggestUsers returns users followed by users the requester follows,
// excluding the requester and anyone already followed.
func (s *SuggestionService) SuggestUsers(ctx context.Context, username string) ([]string, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.graphRepo.SuggestedUsers(ctx, username, suggestionLimit)
}

// SuggestGames returns games liked by users with overlapping taste,
// excluding games the requester already likes.
func (s *SuggestionService) SuggestGames(ctx context.Context, username string) ([]string, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.graphRepo.SuggestedGames(ctx, username, suggestionLimit)
}

// SuggestTournaments returns tournaments joined by co-participants,
// excluding tournaments the requester already joined.
func (s *SuggestionService) SuggestTournaments(ctx context.Context, username string) ([]string, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.graphRepo.SuggestedTournaments(ctx, username, suggestionLimit)
}

// SimilarUsers ranks other users by shared liked games, descending, with
// username ascending as the deterministic tie-break.
func (s *SuggestionService) SimilarUsers(ctx context.Context, username string) ([]models.SimilarUser, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.graphRepo.SharedLikeCounts(ctx, username, suggestionLimit)
}
