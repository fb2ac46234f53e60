package models

import "time"

type League struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Country   *string    `json:"country,omitempty" db:"country"`
	Season    *string    `json:"season,omitempty" db:"season"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
