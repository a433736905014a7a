package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
)

type tournamentFixture struct {
	service        *TournamentService
	tournamentRepo *fakeTournamentRepo
	gameRepo       *fakeGameRepo
	userRepo       *fakeUserRepo
	graphRepo      *fakeGraphRepo
	queueRepo      *fakeQueueRepo
	notifier       *fakeNotifier
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	f := &tournamentFixture{
		tournamentRepo: newFakeTournamentRepo(),
		gameRepo:       newFakeGameRepo(),
		userRepo:       newFakeUserRepo(),
		graphRepo:      newFakeGraphRepo(),
		queueRepo:      newFakeQueueRepo(),
		notifier:       &fakeNotifier{},
	}
	f.service = NewTournamentService(f.tournamentRepo, f.gameRepo, f.userRepo, f.graphRepo, f.queueRepo, f.notifier, testLogger())

	f.userRepo.add("admin")
	require.NoError(t, f.graphRepo.UpsertUser(context.Background(), "admin"))
	f.gameRepo.add("g1", "Catan")
	require.NoError(t, f.graphRepo.UpsertGame(context.Background(), &models.Game{ID: "g1", Name: "Catan"}))
	return f
}

func (f *tournamentFixture) seedUser(t *testing.T, username string) {
	t.Helper()
	f.userRepo.add(username)
	require.NoError(t, f.graphRepo.UpsertUser(context.Background(), username))
}

func validCreateInput() CreateTournamentInput {
	return CreateTournamentInput{
		GameID:          "g1",
		Name:            "Friday Catan",
		Type:            "swiss",
		StartingTime:    time.Now().Add(48 * time.Hour),
		MinParticipants: 2,
		MaxParticipants: 8,
		Visibility:      models.VisibilityPublic,
	}
}

func TestCreateTournament(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)
	require.NotEmpty(t, tournament.ID)
	assert.Equal(t, "admin", tournament.Administrator)
	assert.Equal(t, models.GameSnapshot{ID: "g1", Name: "Catan"}, tournament.Game)
	assert.Equal(t, 0, tournament.NumParticipants)

	stored, err := f.tournamentRepo.FindByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.Name, stored.Name)

	admin, err := f.userRepo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, admin.Created)
}

func TestCreateTournamentValidation(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	badVisibility := validCreateInput()
	badVisibility.Visibility = "FRIENDS_ONLY"
	_, err := f.service.CreateTournament(ctx, "admin", badVisibility)
	assert.ErrorIs(t, err, ErrInvalidVisibility)

	badCapacity := validCreateInput()
	badCapacity.MinParticipants = 10
	badCapacity.MaxParticipants = 4
	_, err = f.service.CreateTournament(ctx, "admin", badCapacity)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	pastStart := validCreateInput()
	pastStart.StartingTime = time.Now().Add(-time.Hour)
	_, err = f.service.CreateTournament(ctx, "admin", pastStart)
	assert.ErrorIs(t, err, ErrStartingTimePast)
}

func TestCreateTournamentUnknownGame(t *testing.T) {
	f := newTournamentFixture(t)

	input := validCreateInput()
	input.GameID = "missing"
	_, err := f.service.CreateTournament(context.Background(), "admin", input)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestCreateTournamentPrivateUnknownAllowed(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.userRepo.add("bob")

	input := validCreateInput()
	input.Visibility = models.VisibilityPrivate
	input.Allowed = []string{"bob", "ghost", "phantom"}

	_, err := f.service.CreateTournament(ctx, "admin", input)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllowedUserUnknown)

	var unknown *UnknownAllowedError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"ghost", "phantom"}, unknown.Usernames)

	// Nothing was created on either side.
	tournaments, listErr := f.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, tournaments)
}

func TestCreateTournamentPublicIgnoresAllowed(t *testing.T) {
	f := newTournamentFixture(t)

	input := validCreateInput()
	input.Allowed = []string{"anyone"}

	tournament, err := f.service.CreateTournament(context.Background(), "admin", input)
	require.NoError(t, err)
	assert.Nil(t, tournament.Allowed)
}

func TestCreateTournamentCompensatesOnDocumentFailure(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.tournamentRepo.insertErr = errors.New("mongo unavailable")

	_, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.Error(t, err)

	// The graph node written before the failed insert was rolled back.
	assert.Empty(t, f.graphRepo.tournaments)
}

func TestUpdateTournament(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	name := "Saturday Catan"
	updated, err := f.service.UpdateTournament(ctx, tournament.ID, "admin", repositories.TournamentPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Saturday Catan", updated.Name)
	// Untouched fields survive the patch.
	assert.Equal(t, tournament.MaxParticipants, updated.MaxParticipants)
}

func TestUpdateTournamentForbidden(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.userRepo.add("mallory")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	name := "hijacked"
	_, err = f.service.UpdateTournament(ctx, tournament.ID, "mallory", repositories.TournamentPatch{Name: &name})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpdateTournamentCapacityBelowRoster(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	// Two registered participants; shrinking below them must be rejected.
	require.NoError(t, f.tournamentRepo.TryIncrementParticipants(ctx, tournament.ID))
	require.NoError(t, f.tournamentRepo.TryIncrementParticipants(ctx, tournament.ID))

	maxP := 1
	_, err = f.service.UpdateTournament(ctx, tournament.ID, "admin", repositories.TournamentPatch{MaxParticipants: &maxP})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestSelectWinner(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.seedUser(t, "alice")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)
	require.NoError(t, f.graphRepo.addParticipates("alice", tournament.ID))

	require.NoError(t, f.service.SelectWinner(ctx, tournament.ID, "alice", "admin"))

	stored, err := f.tournamentRepo.FindByID(ctx, tournament.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Winner)
	assert.Equal(t, "alice", *stored.Winner)

	won, err := f.graphRepo.HasWon(ctx, "alice", tournament.ID)
	require.NoError(t, err)
	assert.True(t, won)

	alice, err := f.userRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Won)
}

func TestSelectWinnerIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.seedUser(t, "alice")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)
	require.NoError(t, f.graphRepo.addParticipates("alice", tournament.ID))

	require.NoError(t, f.service.SelectWinner(ctx, tournament.ID, "alice", "admin"))
	// Retrying the same winner converges without double-counting.
	require.NoError(t, f.service.SelectWinner(ctx, tournament.ID, "alice", "admin"))

	alice, err := f.userRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Won)
}

func TestSelectWinnerAlreadyChosen(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.seedUser(t, "alice")
	f.seedUser(t, "bob")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)
	require.NoError(t, f.graphRepo.addParticipates("alice", tournament.ID))
	require.NoError(t, f.graphRepo.addParticipates("bob", tournament.ID))

	require.NoError(t, f.service.SelectWinner(ctx, tournament.ID, "alice", "admin"))

	err = f.service.SelectWinner(ctx, tournament.ID, "bob", "admin")
	assert.ErrorIs(t, err, ErrWinnerAlreadyChosen)
}

func TestSelectWinnerNotParticipant(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.seedUser(t, "outsider")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	err = f.service.SelectWinner(ctx, tournament.ID, "outsider", "admin")
	assert.ErrorIs(t, err, ErrWinnerNotParticipant)
}

func TestSelectWinnerForbidden(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.seedUser(t, "alice")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	err = f.service.SelectWinner(ctx, tournament.ID, "alice", "alice")
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestDeleteTournament(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.seedUser(t, "alice")
	f.seedUser(t, "bob")

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	for _, username := range []string{"alice", "bob"} {
		require.NoError(t, f.graphRepo.addParticipates(username, tournament.ID))
		require.NoError(t, f.userRepo.IncrementParticipated(ctx, username, 1))
	}

	require.NoError(t, f.service.DeleteTournament(ctx, tournament.ID, "admin"))

	_, err = f.tournamentRepo.FindByID(ctx, tournament.ID)
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
	assert.Empty(t, f.graphRepo.tournaments)

	admin, err := f.userRepo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, admin.Created)

	for _, username := range []string{"alice", "bob"} {
		user, err := f.userRepo.FindByUsername(ctx, username)
		require.NoError(t, err)
		assert.Equal(t, 0, user.Participated, username)
	}

	events := f.notifier.recorded()
	require.NotEmpty(t, events)
	assert.Equal(t, notifiedEvent{TournamentID: tournament.ID, Event: "TOURNAMENT_DELETED"}, events[len(events)-1])
}

func TestDeleteTournamentDegradesOnDocumentFailure(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	tournament, err := f.service.CreateTournament(ctx, "admin", validCreateInput())
	require.NoError(t, err)

	f.tournamentRepo.deleteErr = errors.New("mongo unavailable")

	err = f.service.DeleteTournament(ctx, tournament.ID, "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOperationDegraded)
	require.Len(t, f.queueRepo.pending(), 1)
	assert.Equal(t, models.ReconcileOpDelete, f.queueRepo.pending()[0].Op)
}
