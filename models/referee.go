package models

import "time"

type Referee struct {
	ID                 int       `json:"id" db:"id"`
	FirstName          string    `json:"first_name" db:"first_name"`
	LastName           string    `json:"last_name" db:"last_name"`
	CertificationLevel *string   `json:"certification_level,omitempty" db:"certification_level"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
