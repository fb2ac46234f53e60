package models

import "time"

type Coach struct {
	ID          int       `json:"id" db:"id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Nationality *string   `json:"nationality,omitempty" db:"nationality"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
