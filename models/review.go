package models

import "time"

// Authored carries the author/date/content triple shared by every
// user-generated entity. It is embedded as a value, not inherited.
type Authored struct {
	Author   string    `bson:"author" json:"author"`
	PostedAt time.Time `bson:"posted_at" json:"posted_at"`
	Content  string    `bson:"content" json:"content"`
}

// Review is a free-text game review with a 1..5 rating. Ratings feed the
// difficulty index through the average-rating aggregation.
type Review struct {
	ID       string `bson:"_id" json:"id"`
	GameID   string `bson:"game_id" json:"game_id"`
	Rating   int    `bson:"rating" json:"rating"`
	Authored `bson:",inline"`
}
