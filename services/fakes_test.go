package services

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
	"github.com/playmeeple/meeplehub/storage"
)

// In-memory doubles for the two stores. The graph fake runs the traversal
// semantics in plain Go so suggestion and density tests assert against real
// 2-hop behavior, not canned answers.

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament

	insertErr    error
	incrementErr error
	decrementErr error
	setWinnerErr error
	deleteErr    error
	setCountErr  error

	// onIncrement fires after a successful increment, letting a test splice a
	// concurrent write between the counter CAS and the edge merge.
	onIncrement func()
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) Insert(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.tournaments[t.ID]; ok {
		return repositories.ErrTournamentConflict
	}
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) FindByID(_ context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.GameID != nil && t.Game.ID != *filter.GameID {
			continue
		}
		if filter.Administrator != nil && t.Administrator != *filter.Administrator {
			continue
		}
		if filter.Visibility != nil && t.Visibility != *filter.Visibility {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeTournamentRepo) ApplyPatch(_ context.Context, id string, patch repositories.TournamentPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.TypeDescription != nil {
		t.TypeDescription = *patch.TypeDescription
	}
	if patch.Location != nil {
		t.Location = patch.Location
	}
	if patch.StartingTime != nil {
		t.StartingTime = *patch.StartingTime
	}
	if patch.MinParticipants != nil {
		t.MinParticipants = *patch.MinParticipants
	}
	if patch.MaxParticipants != nil {
		t.MaxParticipants = *patch.MaxParticipants
	}
	if patch.Options != nil {
		t.Options = *patch.Options
	}
	return nil
}

func (r *fakeTournamentRepo) SetWinner(_ context.Context, id, winner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setWinnerErr != nil {
		return r.setWinnerErr
	}
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Winner = &winner
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) TryIncrementParticipants(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.NumParticipants >= t.MaxParticipants {
		return repositories.ErrTournamentFull
	}
	t.NumParticipants++
	if r.onIncrement != nil {
		r.onIncrement()
	}
	return nil
}

func (r *fakeTournamentRepo) DecrementParticipants(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decrementErr != nil {
		return r.decrementErr
	}
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.NumParticipants > 0 {
		t.NumParticipants--
	}
	return nil
}

func (r *fakeTournamentRepo) SetParticipantCount(_ context.Context, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setCountErr != nil {
		return r.setCountErr
	}
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.NumParticipants = count
	return nil
}

func (r *fakeTournamentRepo) count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tournaments[id]; ok {
		return t.NumParticipants
	}
	return -1
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) add(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = &models.User{Username: username, Role: models.RoleUser}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return repositories.ErrUserConflict
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, username string, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

func (r *fakeUserRepo) FilterUnknown(_ context.Context, usernames []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var unknown []string
	for _, username := range usernames {
		if _, ok := r.users[username]; !ok {
			unknown = append(unknown, username)
		}
	}
	return unknown, nil
}

func (r *fakeUserRepo) IncrementCreated(_ context.Context, username string, delta int) error {
	return r.increment(username, delta, func(u *models.User, d int) { u.Created += d })
}

func (r *fakeUserRepo) IncrementParticipated(_ context.Context, username string, delta int) error {
	return r.increment(username, delta, func(u *models.User, d int) { u.Participated += d })
}

func (r *fakeUserRepo) IncrementWon(_ context.Context, username string, delta int) error {
	return r.increment(username, delta, func(u *models.User, d int) { u.Won += d })
}

func (r *fakeUserRepo) increment(username string, delta int, apply func(*models.User, int)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return repositories.ErrUserNotFound
	}
	apply(user, delta)
	return nil
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[string]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*models.Game)}
}

func (r *fakeGameRepo) add(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[id] = &models.Game{ID: id, Name: name}
}

func (r *fakeGameRepo) Create(_ context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; ok {
		return repositories.ErrGameConflict
	}
	copied := *game
	r.games[game.ID] = &copied
	return nil
}

func (r *fakeGameRepo) FindByID(_ context.Context, id string) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (r *fakeGameRepo) List(_ context.Context, limit, offset int) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Game, 0, len(r.games))
	for _, g := range r.games {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeGameRepo) Update(_ context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return repositories.ErrGameNotFound
	}
	copied := *game
	r.games[game.ID] = &copied
	return nil
}

func (r *fakeGameRepo) UpdateBoxArtKey(_ context.Context, id string, boxArtKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	game.BoxArtKey = boxArtKey
	return nil
}

func (r *fakeGameRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{}
}

func (r *fakeReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeReviewRepo) ListByGame(_ context.Context, gameID string, limit, offset int) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Review, 0)
	for _, review := range r.reviews {
		if review.GameID == gameID {
			result = append(result, review)
		}
	}
	return result, nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, review := range r.reviews {
		if review.ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return repositories.ErrReviewNotFound
}

func (r *fakeReviewRepo) AverageRatingByGame(_ context.Context, gameID string) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, n := 0, 0
	for _, review := range r.reviews {
		if review.GameID == gameID {
			sum += review.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(n), true, nil
}

type fakeQueueRepo struct {
	mu    sync.Mutex
	tasks []models.ReconcileTask

	enqueueErr error
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{}
}

func (r *fakeQueueRepo) Enqueue(_ context.Context, task *models.ReconcileTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enqueueErr != nil {
		return r.enqueueErr
	}
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *fakeQueueRepo) ListPending(_ context.Context, limit int) ([]models.ReconcileTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.ReconcileTask, len(r.tasks))
	copy(result, r.tasks)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeQueueRepo) MarkAttempt(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].Attempts++
			return nil
		}
	}
	return repositories.ErrReconcileTaskNotFound
}

func (r *fakeQueueRepo) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return repositories.ErrReconcileTaskNotFound
}

func (r *fakeQueueRepo) pending() []models.ReconcileTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.ReconcileTask, len(r.tasks))
	copy(result, r.tasks)
	return result
}

// fakeGraphRepo keeps nodes and adjacency sets in maps and answers the 2-hop
// traversals by walking them, mirroring the Cypher semantics including
// exclusion rules and ordering.
type fakeGraphRepo struct {
	mu sync.Mutex

	users       map[string]bool
	games       map[string]bool
	tournaments map[string]bool

	follows      map[string]map[string]bool
	likes        map[string]map[string]bool
	creates      map[string]map[string]bool
	participates map[string]map[string]bool
	won          map[string]map[string]bool

	createParticipatesErr error
	deleteParticipatesErr error
	upsertTournamentErr   error
	deleteTournamentErr   error
	createCreatesErr      error
}

func newFakeGraphRepo() *fakeGraphRepo {
	return &fakeGraphRepo{
		users:        make(map[string]bool),
		games:        make(map[string]bool),
		tournaments:  make(map[string]bool),
		follows:      make(map[string]map[string]bool),
		likes:        make(map[string]map[string]bool),
		creates:      make(map[string]map[string]bool),
		participates: make(map[string]map[string]bool),
		won:          make(map[string]map[string]bool),
	}
}

func addEdge(edges map[string]map[string]bool, from, to string) {
	if edges[from] == nil {
		edges[from] = make(map[string]bool)
	}
	edges[from][to] = true
}

// mergeEdge mirrors the repository MERGE: missing endpoint nodes are an
// error, an existing edge is matched rather than created.
func mergeEdge(edges map[string]map[string]bool, from, to string, fromExists, toExists bool) (bool, error) {
	if !fromExists || !toExists {
		return false, repositories.ErrGraphNodeMissing
	}
	if edges[from][to] {
		return false, nil
	}
	addEdge(edges, from, to)
	return true, nil
}

func (r *fakeGraphRepo) UpsertUser(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = true
	return nil
}

func (r *fakeGraphRepo) UpsertGame(_ context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = true
	return nil
}

func (r *fakeGraphRepo) DeleteGame(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
	for _, targets := range r.likes {
		delete(targets, gameID)
	}
	return nil
}

func (r *fakeGraphRepo) UpsertTournament(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertTournamentErr != nil {
		return r.upsertTournamentErr
	}
	r.tournaments[t.ID] = true
	return nil
}

func (r *fakeGraphRepo) DeleteTournament(_ context.Context, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteTournamentErr != nil {
		return r.deleteTournamentErr
	}
	delete(r.tournaments, tournamentID)
	for _, edges := range []map[string]map[string]bool{r.creates, r.participates, r.won} {
		for _, targets := range edges {
			delete(targets, tournamentID)
		}
	}
	return nil
}

func (r *fakeGraphRepo) UserExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[username], nil
}

func (r *fakeGraphRepo) GameExists(_ context.Context, gameID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games[gameID], nil
}

func (r *fakeGraphRepo) CreateFollows(_ context.Context, follower, followee string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := mergeEdge(r.follows, follower, followee, r.users[follower], r.users[followee])
	return err
}

func (r *fakeGraphRepo) DeleteFollows(_ context.Context, follower, followee string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.follows[follower], followee)
	return nil
}

func (r *fakeGraphRepo) CreateLikes(_ context.Context, username, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := mergeEdge(r.likes, username, gameID, r.users[username], r.games[gameID])
	return err
}

func (r *fakeGraphRepo) DeleteLikes(_ context.Context, username, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes[username], gameID)
	return nil
}

func (r *fakeGraphRepo) CreateCreates(_ context.Context, username, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createCreatesErr != nil {
		return r.createCreatesErr
	}
	_, err := mergeEdge(r.creates, username, tournamentID, r.users[username], r.tournaments[tournamentID])
	return err
}

func (r *fakeGraphRepo) CreateParticipates(_ context.Context, username, tournamentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createParticipatesErr != nil {
		return false, r.createParticipatesErr
	}
	return mergeEdge(r.participates, username, tournamentID, r.users[username], r.tournaments[tournamentID])
}

// addParticipates seeds an edge without the two-value ceremony.
func (r *fakeGraphRepo) addParticipates(username, tournamentID string) error {
	_, err := r.CreateParticipates(context.Background(), username, tournamentID)
	return err
}

func (r *fakeGraphRepo) DeleteParticipates(_ context.Context, username, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteParticipatesErr != nil {
		return r.deleteParticipatesErr
	}
	delete(r.participates[username], tournamentID)
	return nil
}

func (r *fakeGraphRepo) CreateWon(_ context.Context, username, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := mergeEdge(r.won, username, tournamentID, r.users[username], r.tournaments[tournamentID])
	return err
}

func (r *fakeGraphRepo) HasParticipates(_ context.Context, username, tournamentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participates[username][tournamentID], nil
}

func (r *fakeGraphRepo) HasWon(_ context.Context, username, tournamentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.won[username][tournamentID], nil
}

func (r *fakeGraphRepo) CountParticipants(_ context.Context, tournamentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, targets := range r.participates {
		if targets[tournamentID] {
			count++
		}
	}
	return count, nil
}

func (r *fakeGraphRepo) ListParticipants(_ context.Context, tournamentID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	participants := make([]string, 0)
	for username, targets := range r.participates {
		if targets[tournamentID] {
			participants = append(participants, username)
		}
	}
	sort.Strings(participants)
	return participants, nil
}

func (r *fakeGraphRepo) SuggestedUsers(_ context.Context, username string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := make(map[string]bool)
	for followed := range r.follows[username] {
		for candidate := range r.follows[followed] {
			if candidate == username || r.follows[username][candidate] {
				continue
			}
			candidates[candidate] = true
		}
	}
	return sortedLimited(candidates, limit), nil
}

func (r *fakeGraphRepo) SuggestedGames(_ context.Context, username string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := make(map[string]bool)
	for other, otherLikes := range r.likes {
		if other == username || !sharesAny(otherLikes, r.likes[username]) {
			continue
		}
		for game := range otherLikes {
			if !r.likes[username][game] {
				candidates[game] = true
			}
		}
	}
	return sortedLimited(candidates, limit), nil
}

func (r *fakeGraphRepo) SuggestedTournaments(_ context.Context, username string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := make(map[string]bool)
	for other, otherJoined := range r.participates {
		if other == username || !sharesAny(otherJoined, r.participates[username]) {
			continue
		}
		for tournament := range otherJoined {
			if !r.participates[username][tournament] {
				candidates[tournament] = true
			}
		}
	}
	return sortedLimited(candidates, limit), nil
}

func (r *fakeGraphRepo) SharedLikeCounts(_ context.Context, username string, limit int) ([]models.SimilarUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	similar := make([]models.SimilarUser, 0)
	for other, otherLikes := range r.likes {
		if other == username {
			continue
		}
		shared := 0
		for game := range otherLikes {
			if r.likes[username][game] {
				shared++
			}
		}
		if shared > 0 {
			similar = append(similar, models.SimilarUser{Username: other, SharedLikes: shared})
		}
	}
	sort.Slice(similar, func(i, j int) bool {
		if similar[i].SharedLikes != similar[j].SharedLikes {
			return similar[i].SharedLikes > similar[j].SharedLikes
		}
		return similar[i].Username < similar[j].Username
	})
	if limit > 0 && len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

func (r *fakeGraphRepo) CountFollowsPairsAmongParticipants(_ context.Context, tournamentID string) (int, error) {
	r.mu.Lock()
	participants := make([]string, 0)
	for username, targets := range r.participates {
		if targets[tournamentID] {
			participants = append(participants, username)
		}
	}
	sort.Strings(participants)
	pairs := 0
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			a, b := participants[i], participants[j]
			if r.follows[a][b] || r.follows[b][a] {
				pairs++
			}
		}
	}
	r.mu.Unlock()
	return pairs, nil
}

func sharesAny(a, b map[string]bool) bool {
	for key := range a {
		if b[key] {
			return true
		}
	}
	return false
}

func sortedLimited(set map[string]bool, limit int) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, _ io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key), ETag: "etag"}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.uploaded, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type notifiedEvent struct {
	TournamentID string
	Event        string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

func (n *fakeNotifier) NotifyTournament(tournamentID, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifiedEvent{TournamentID: tournamentID, Event: event})
}

func (n *fakeNotifier) recorded() []notifiedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]notifiedEvent, len(n.events))
	copy(result, n.events)
	return result
}
