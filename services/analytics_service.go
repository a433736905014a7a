package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/playmeeple/meeplehub/repositories"
)

// neutralRating stands in for the category-average when a game has no
// reviews yet; midpoint of the 1..5 scale.
const neutralRating = 2.5

// AnalyticsService derives the two graph-backed indices. Both are read-only
// and bounded to [0,1]; the exact arithmetic is a documented choice, the
// invariants (range, monotonicity in max capacity) are the contract.
type AnalyticsService struct {
	tournamentRepo repositories.TournamentRepository
	reviewRepo     repositories.ReviewRepository
	graphRepo      repositories.GraphRepository
}

func NewAnalyticsService(
	tournamentRepo repositories.TournamentRepository,
	reviewRepo repositories.ReviewRepository,
	graphRepo repositories.GraphRepository,
) *AnalyticsService {
	return &AnalyticsService{
		tournamentRepo: tournamentRepo,
		reviewRepo:     reviewRepo,
		graphRepo:      graphRepo,
	}
}

// ComputeDifficulty scores how hard a tournament is to fill and win:
//
//	fill  = 1 - 1/(1 + ln(1 + max - min))    // grows with the capacity spread
//	score = 0.6*fill + 0.4*(1 - avgRating/5) // poorly rated games are harder to fill
//
// fill is strictly increasing in maxParticipants (min fixed), so the score
// is monotonic in maxParticipants; both terms live in [0,1].
func (s *AnalyticsService) ComputeDifficulty(ctx context.Context, tournamentID string) (float64, error) {
	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, fmt.Errorf("failed to load tournament: %w", err)
	}

	avgRating, rated, err := s.reviewRepo.AverageRatingByGame(ctx, tournament.Game.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load historical rating: %w", err)
	}
	if !rated {
		avgRating = neutralRating
	}

	spread := tournament.MaxParticipants - tournament.MinParticipants
	if spread < 0 {
		spread = 0
	}
	fill := 1 - 1/(1+math.Log1p(float64(spread)))
	score := 0.6*fill + 0.4*(1-avgRating/5)
	return clamp01(score), nil
}

// ComputeSocialDensity measures how "social" a roster is: the fraction of
// distinct participant pairs connected by a FOLLOWS edge in either
// direction. Rosters with fewer than two participants score zero.
func (s *AnalyticsService) ComputeSocialDensity(ctx context.Context, tournamentID string) (float64, error) {
	if _, err := s.tournamentRepo.FindByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, fmt.Errorf("failed to load tournament: %w", err)
	}

	var participants, followPairs int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.graphRepo.CountParticipants(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		participants = n
		return nil
	})
	g.Go(func() error {
		n, err := s.graphRepo.CountFollowsPairsAmongParticipants(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count follow pairs: %w", err)
		}
		followPairs = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	totalPairs := participants * (participants - 1) / 2
	if totalPairs == 0 {
		return 0, nil
	}
	return clamp01(float64(followPairs) / float64(totalPairs)), nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
