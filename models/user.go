package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is the document-store profile record. Username is the natural key and
// doubles as the graph node key. The three tournament counters are maintained
// by the lifecycle services, never written by handlers directly.
type User struct {
	Username     string    `bson:"_id" json:"username"`
	FirstName    string    `bson:"first_name" json:"first_name"`
	LastName     string    `bson:"last_name" json:"last_name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         UserRole  `bson:"role" json:"role"`
	AvatarKey    *string   `bson:"avatar_key,omitempty" json:"-"`
	AvatarURL    *string   `bson:"-" json:"avatar_url,omitempty"`
	Created      int       `bson:"tournaments_created" json:"tournaments_created"`
	Participated int       `bson:"tournaments_participated" json:"tournaments_participated"`
	Won          int       `bson:"tournaments_won" json:"tournaments_won"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
