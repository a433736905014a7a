package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/playmeeple/meeplehub/models"
)

// ErrGraphNodeMissing reports an edge write whose endpoint node is absent. A
// MERGE behind a failed MATCH produces zero rows and zero writes, which must
// not pass for success.
var ErrGraphNodeMissing = errors.New("graph node missing")

// GraphRepository is the property-graph adapter. It only executes
// parameterized traversals and idempotent MERGE/DELETE writes; every ranking
// or exclusion rule lives in the Cypher of a named query, every business
// decision lives in the services. Edge writes are MERGE-based so a retried
// compensation is always safe.
type GraphRepository interface {
	UpsertUser(ctx context.Context, username string) error
	UpsertGame(ctx context.Context, game *models.Game) error
	DeleteGame(ctx context.Context, gameID string) error
	UpsertTournament(ctx context.Context, t *models.Tournament) error
	DeleteTournament(ctx context.Context, tournamentID string) error

	UserExists(ctx context.Context, username string) (bool, error)
	GameExists(ctx context.Context, gameID string) (bool, error)

	CreateFollows(ctx context.Context, follower, followee string) error
	DeleteFollows(ctx context.Context, follower, followee string) error
	CreateLikes(ctx context.Context, username, gameID string) error
	DeleteLikes(ctx context.Context, username, gameID string) error
	CreateCreates(ctx context.Context, username, tournamentID string) error
	// CreateParticipates reports whether the MERGE actually created the
	// edge; false means a concurrent registration got there first.
	CreateParticipates(ctx context.Context, username, tournamentID string) (bool, error)
	DeleteParticipates(ctx context.Context, username, tournamentID string) error
	CreateWon(ctx context.Context, username, tournamentID string) error

	HasParticipates(ctx context.Context, username, tournamentID string) (bool, error)
	HasWon(ctx context.Context, username, tournamentID string) (bool, error)
	CountParticipants(ctx context.Context, tournamentID string) (int, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]string, error)

	SuggestedUsers(ctx context.Context, username string, limit int) ([]string, error)
	SuggestedGames(ctx context.Context, username string, limit int) ([]string, error)
	SuggestedTournaments(ctx context.Context, username string, limit int) ([]string, error)
	SharedLikeCounts(ctx context.Context, username string, limit int) ([]models.SimilarUser, error)
	CountFollowsPairsAmongParticipants(ctx context.Context, tournamentID string) (int, error)
}

type neo4jGraphRepository struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jGraphRepository(driver neo4j.DriverWithContext) GraphRepository {
	return &neo4jGraphRepository{driver: driver}
}

func (r *neo4jGraphRepository) write(ctx context.Context, query string, params map[string]any) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return fmt.Errorf("graph write failed: %w", err)
	}
	if _, err = result.Consume(ctx); err != nil {
		return fmt.Errorf("graph write failed: %w", err)
	}
	return nil
}

func (r *neo4jGraphRepository) readStrings(ctx context.Context, query, column string, params map[string]any) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("graph read failed: %w", err)
	}

	values := make([]string, 0)
	for result.Next(ctx) {
		raw, ok := result.Record().Get(column)
		if !ok {
			continue
		}
		if s, ok := raw.(string); ok {
			values = append(values, s)
		}
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("graph read failed: %w", err)
	}
	return values, nil
}

func (r *neo4jGraphRepository) readCount(ctx context.Context, query, column string, params map[string]any) (int, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return 0, fmt.Errorf("graph read failed: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("graph read failed: %w", err)
	}
	raw, ok := record.Get(column)
	if !ok {
		return 0, fmt.Errorf("graph read failed: missing %q column", column)
	}
	count, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("graph read failed: %q is not an integer", column)
	}
	return int(count), nil
}

func (r *neo4jGraphRepository) UpsertUser(ctx context.Context, username string) error {
	return r.write(ctx, `MERGE (u:User {username: $username})`, map[string]any{
		"username": username,
	})
}

func (r *neo4jGraphRepository) UpsertGame(ctx context.Context, game *models.Game) error {
	query := `
		MERGE (g:Game {id: $id})
		SET g.name = $name,
		    g.year_released = $yearReleased,
		    g.short_description = $shortDescription,
		    g.categories = $categories`
	return r.write(ctx, query, map[string]any{
		"id":               game.ID,
		"name":             game.Name,
		"yearReleased":     game.YearReleased,
		"shortDescription": game.ShortDescription,
		"categories":       game.Categories,
	})
}

func (r *neo4jGraphRepository) DeleteGame(ctx context.Context, gameID string) error {
	return r.write(ctx, `MATCH (g:Game {id: $id}) DETACH DELETE g`, map[string]any{
		"id": gameID,
	})
}

// UpsertTournament writes the read-optimized projection of the document
// record. The node is rebuildable from the document store at any time.
func (r *neo4jGraphRepository) UpsertTournament(ctx context.Context, t *models.Tournament) error {
	query := `
		MERGE (t:Tournament {id: $id})
		SET t.name = $name,
		    t.visibility = $visibility,
		    t.max_participants = $maxParticipants,
		    t.starting_time = datetime($startingTime)`
	return r.write(ctx, query, map[string]any{
		"id":              t.ID,
		"name":            t.Name,
		"visibility":      string(t.Visibility),
		"maxParticipants": t.MaxParticipants,
		"startingTime":    t.StartingTime.UTC().Format(time.RFC3339),
	})
}

// DeleteTournament removes the node and every edge touching it in one
// statement, so no dangling PARTICIPATES/CREATES/WON edge can survive.
func (r *neo4jGraphRepository) DeleteTournament(ctx context.Context, tournamentID string) error {
	return r.write(ctx, `MATCH (t:Tournament {id: $id}) DETACH DELETE t`, map[string]any{
		"id": tournamentID,
	})
}

func (r *neo4jGraphRepository) UserExists(ctx context.Context, username string) (bool, error) {
	count, err := r.readCount(ctx,
		`MATCH (u:User {username: $username}) RETURN count(u) AS c`,
		"c",
		map[string]any{"username": username},
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *neo4jGraphRepository) GameExists(ctx context.Context, gameID string) (bool, error) {
	count, err := r.readCount(ctx,
		`MATCH (g:Game {id: $id}) RETURN count(g) AS c`,
		"c",
		map[string]any{"id": gameID},
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// mergeUserEdge merges a single (:User)-[kind]->(target) edge. The trailing
// count(r) distinguishes "edge already existed" from "an endpoint did not
// match": zero merged rows means a missing node, and the write counters say
// whether this call created the relationship.
func (r *neo4jGraphRepository) mergeUserEdge(ctx context.Context, kind, matchTarget, username, targetKey string) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (u:User {username: $username})
		MATCH %s
		MERGE (u)-[r:%s]->(t)
		ON CREATE SET r.since = datetime()
		RETURN count(r) AS c`, matchTarget, kind)
	result, err := session.Run(ctx, query, map[string]any{
		"username": username,
		"target":   targetKey,
	})
	if err != nil {
		return false, fmt.Errorf("graph write failed: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return false, fmt.Errorf("graph write failed: %w", err)
	}
	raw, _ := record.Get("c")
	merged, _ := raw.(int64)
	summary, err := result.Consume(ctx)
	if err != nil {
		return false, fmt.Errorf("graph write failed: %w", err)
	}
	if merged == 0 {
		return false, fmt.Errorf("%s edge %s -> %s: %w", kind, username, targetKey, ErrGraphNodeMissing)
	}
	return summary.Counters().RelationshipsCreated() > 0, nil
}

func (r *neo4jGraphRepository) CreateFollows(ctx context.Context, follower, followee string) error {
	_, err := r.mergeUserEdge(ctx, "FOLLOWS", `(t:User {username: $target})`, follower, followee)
	return err
}

func (r *neo4jGraphRepository) DeleteFollows(ctx context.Context, follower, followee string) error {
	query := `
		MATCH (u:User {username: $username})-[r:FOLLOWS]->(t:User {username: $target})
		DELETE r`
	return r.write(ctx, query, map[string]any{"username": follower, "target": followee})
}

func (r *neo4jGraphRepository) CreateLikes(ctx context.Context, username, gameID string) error {
	_, err := r.mergeUserEdge(ctx, "LIKES", `(t:Game {id: $target})`, username, gameID)
	return err
}

func (r *neo4jGraphRepository) DeleteLikes(ctx context.Context, username, gameID string) error {
	query := `
		MATCH (u:User {username: $username})-[r:LIKES]->(t:Game {id: $target})
		DELETE r`
	return r.write(ctx, query, map[string]any{"username": username, "target": gameID})
}

func (r *neo4jGraphRepository) CreateCreates(ctx context.Context, username, tournamentID string) error {
	_, err := r.mergeUserEdge(ctx, "CREATES", `(t:Tournament {id: $target})`, username, tournamentID)
	return err
}

func (r *neo4jGraphRepository) CreateParticipates(ctx context.Context, username, tournamentID string) (bool, error) {
	return r.mergeUserEdge(ctx, "PARTICIPATES", `(t:Tournament {id: $target})`, username, tournamentID)
}

func (r *neo4jGraphRepository) DeleteParticipates(ctx context.Context, username, tournamentID string) error {
	query := `
		MATCH (u:User {username: $username})-[r:PARTICIPATES]->(t:Tournament {id: $target})
		DELETE r`
	return r.write(ctx, query, map[string]any{"username": username, "target": tournamentID})
}

func (r *neo4jGraphRepository) CreateWon(ctx context.Context, username, tournamentID string) error {
	_, err := r.mergeUserEdge(ctx, "WON", `(t:Tournament {id: $target})`, username, tournamentID)
	return err
}

func (r *neo4jGraphRepository) HasParticipates(ctx context.Context, username, tournamentID string) (bool, error) {
	count, err := r.readCount(ctx, `
		MATCH (u:User {username: $username})-[r:PARTICIPATES]->(t:Tournament {id: $target})
		RETURN count(r) AS c`,
		"c",
		map[string]any{"username": username, "target": tournamentID},
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *neo4jGraphRepository) HasWon(ctx context.Context, username, tournamentID string) (bool, error) {
	count, err := r.readCount(ctx, `
		MATCH (u:User {username: $username})-[r:WON]->(t:Tournament {id: $target})
		RETURN count(r) AS c`,
		"c",
		map[string]any{"username": username, "target": tournamentID},
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountParticipants returns the true participant count: the number of
// PARTICIPATES edges into the tournament node. Reconciliation treats this as
// the authoritative value for the document-store counter.
func (r *neo4jGraphRepository) CountParticipants(ctx context.Context, tournamentID string) (int, error) {
	return r.readCount(ctx, `
		MATCH (:User)-[r:PARTICIPATES]->(t:Tournament {id: $target})
		RETURN count(r) AS c`,
		"c",
		map[string]any{"target": tournamentID},
	)
}

func (r *neo4jGraphRepository) ListParticipants(ctx context.Context, tournamentID string) ([]string, error) {
	return r.readStrings(ctx, `
		MATCH (u:User)-[:PARTICIPATES]->(t:Tournament {id: $target})
		RETURN u.username AS username
		ORDER BY username ASC`,
		"username",
		map[string]any{"target": tournamentID},
	)
}

// SuggestedUsers: users followed by users the requester follows, excluding
// the requester and anyone already followed.
func (r *neo4jGraphRepository) SuggestedUsers(ctx context.Context, username string, limit int) ([]string, error) {
	return r.readStrings(ctx, `
		MATCH (me:User {username: $username})-[:FOLLOWS]->(:User)-[:FOLLOWS]->(c:User)
		WHERE c.username <> $username AND NOT (me)-[:FOLLOWS]->(c)
		RETURN DISTINCT c.username AS username
		ORDER BY username ASC
		LIMIT $limit`,
		"username",
		map[string]any{"username": username, "limit": limit},
	)
}

// SuggestedGames: games liked by users who like a game the requester likes,
// excluding games the requester already likes.
func (r *neo4jGraphRepository) SuggestedGames(ctx context.Context, username string, limit int) ([]string, error) {
	return r.readStrings(ctx, `
		MATCH (me:User {username: $username})-[:LIKES]->(:Game)<-[:LIKES]-(:User)-[:LIKES]->(c:Game)
		WHERE NOT (me)-[:LIKES]->(c)
		RETURN DISTINCT c.id AS id
		ORDER BY id ASC
		LIMIT $limit`,
		"id",
		map[string]any{"username": username, "limit": limit},
	)
}

// SuggestedTournaments: tournaments joined by co-participants, excluding
// tournaments already joined.
func (r *neo4jGraphRepository) SuggestedTournaments(ctx context.Context, username string, limit int) ([]string, error) {
	return r.readStrings(ctx, `
		MATCH (me:User {username: $username})-[:PARTICIPATES]->(:Tournament)<-[:PARTICIPATES]-(:User)-[:PARTICIPATES]->(c:Tournament)
		WHERE NOT (me)-[:PARTICIPATES]->(c)
		RETURN DISTINCT c.id AS id
		ORDER BY id ASC
		LIMIT $limit`,
		"id",
		map[string]any{"username": username, "limit": limit},
	)
}

// SharedLikeCounts ranks other users by the number of liked games shared
// with the requester, descending, username ascending on ties.
func (r *neo4jGraphRepository) SharedLikeCounts(ctx context.Context, username string, limit int) ([]models.SimilarUser, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (me:User {username: $username})-[:LIKES]->(g:Game)<-[:LIKES]-(o:User)
		WHERE o.username <> $username
		RETURN o.username AS username, count(DISTINCT g) AS shared
		ORDER BY shared DESC, username ASC
		LIMIT $limit`,
		map[string]any{"username": username, "limit": limit},
	)
	if err != nil {
		return nil, fmt.Errorf("graph read failed: %w", err)
	}

	similar := make([]models.SimilarUser, 0)
	for result.Next(ctx) {
		record := result.Record()
		name, _ := record.Get("username")
		shared, _ := record.Get("shared")
		nameStr, okName := name.(string)
		sharedInt, okShared := shared.(int64)
		if !okName || !okShared {
			continue
		}
		similar = append(similar, models.SimilarUser{Username: nameStr, SharedLikes: int(sharedInt)})
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("graph read failed: %w", err)
	}
	return similar, nil
}

// CountFollowsPairsAmongParticipants counts distinct participant pairs
// connected by a FOLLOWS edge in either direction. Feeds the social density
// index.
func (r *neo4jGraphRepository) CountFollowsPairsAmongParticipants(ctx context.Context, tournamentID string) (int, error) {
	return r.readCount(ctx, `
		MATCH (a:User)-[:PARTICIPATES]->(t:Tournament {id: $target})<-[:PARTICIPATES]-(b:User)
		WHERE a.username < b.username AND ((a)-[:FOLLOWS]->(b) OR (b)-[:FOLLOWS]->(a))
		RETURN count(*) AS c`,
		"c",
		map[string]any{"target": tournamentID},
	)
}
