package models

import "time"

type Venue struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	City      *string   `json:"city,omitempty" db:"city"`
	Capacity  *int      `json:"capacity,omitempty" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}
