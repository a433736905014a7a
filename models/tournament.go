package models

import "time"

// TournamentVisibility соответствует значению поля visibility в документе турнира.
type TournamentVisibility string

const (
	VisibilityPublic  TournamentVisibility = "PUBLIC"
	VisibilityPrivate TournamentVisibility = "PRIVATE"
	VisibilityInvite  TournamentVisibility = "INVITE"
)

// TournamentStatus is computed at read time, never stored.
type TournamentStatus string

const (
	StatusOpen     TournamentStatus = "open"
	StatusClosed   TournamentStatus = "closed"
	StatusResolved TournamentStatus = "resolved"
)

// GameSnapshot is the denormalized game reference embedded in a tournament
// document. It is frozen at creation time.
type GameSnapshot struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	YearReleased int    `bson:"year_released" json:"year_released"`
}

// TournamentOption is a key-value toggle attached to a tournament.
type TournamentOption struct {
	Key   string `bson:"key" json:"key"`
	Value string `bson:"value" json:"value"`
}

// Tournament is the authoritative document-store record. NumParticipants is a
// derived counter: it must equal the number of PARTICIPATES edges pointing to
// the tournament's graph node whenever no registration is in flight.
type Tournament struct {
	ID              string               `bson:"_id" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Type            string               `bson:"type" json:"type"`
	TypeDescription string               `bson:"type_description,omitempty" json:"type_description,omitempty"`
	Game            GameSnapshot         `bson:"game" json:"game"`
	Location        *string              `bson:"location,omitempty" json:"location,omitempty"`
	StartingTime    time.Time            `bson:"starting_time" json:"starting_time"`
	MinParticipants int                  `bson:"min_participants" json:"min_participants"`
	MaxParticipants int                  `bson:"max_participants" json:"max_participants"`
	NumParticipants int                  `bson:"num_participants" json:"num_participants"`
	Administrator   string               `bson:"administrator" json:"administrator"`
	Winner          *string              `bson:"winner,omitempty" json:"winner,omitempty"`
	Visibility      TournamentVisibility `bson:"visibility" json:"visibility"`
	Options         []TournamentOption   `bson:"options,omitempty" json:"options,omitempty"`
	Allowed         []string             `bson:"allowed,omitempty" json:"allowed,omitempty"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
}

// Started reports whether the tournament's starting time has passed.
func (t *Tournament) Started(now time.Time) bool {
	return !t.StartingTime.After(now)
}

// RegistrationClosed reports the computed closure of the tournament: there is
// no stored "closed" flag, closure follows from capacity or starting time.
func (t *Tournament) RegistrationClosed(now time.Time) bool {
	return t.NumParticipants >= t.MaxParticipants || t.Started(now)
}

// Resolved reports whether a winner has been selected.
func (t *Tournament) Resolved() bool {
	return t.Winner != nil
}

// Status derives the lifecycle status at the given instant.
func (t *Tournament) Status(now time.Time) TournamentStatus {
	switch {
	case t.Resolved():
		return StatusResolved
	case t.RegistrationClosed(now):
		return StatusClosed
	default:
		return StatusOpen
	}
}

// AllowsRegistration checks the visibility gate for a username. The allowed
// list of a PRIVATE tournament is fixed at creation time.
func (t *Tournament) AllowsRegistration(username string) bool {
	if t.Visibility != VisibilityPrivate {
		return true
	}
	for _, allowed := range t.Allowed {
		if allowed == username {
			return true
		}
	}
	return false
}
