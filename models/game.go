package models

import "time"

// Game представляет запись каталога игр в документном хранилище.
type Game struct {
	ID               string    `bson:"_id" json:"id"`
	Name             string    `bson:"name" json:"name"`
	YearReleased     int       `bson:"year_released" json:"year_released"`
	ShortDescription string    `bson:"short_description,omitempty" json:"short_description,omitempty"`
	Categories       []string  `bson:"categories,omitempty" json:"categories,omitempty"`
	BoxArtKey        *string   `bson:"box_art_key,omitempty" json:"-"`
	BoxArtURL        *string   `bson:"-" json:"box_art_url,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// Snapshot freezes the fields a tournament denormalizes at creation time.
func (g *Game) Snapshot() GameSnapshot {
	return GameSnapshot{
		ID:           g.ID,
		Name:         g.Name,
		YearReleased: g.YearReleased,
	}
}
