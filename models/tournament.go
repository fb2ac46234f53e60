package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие CHECK в БД.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	LeagueID  *int             `json:"league_id,omitempty" db:"league_id"`
	Status    TournamentStatus `json:"status" db:"status"`
	StartDate time.Time        `json:"start_date" db:"start_date"`
	EndDate   *time.Time       `json:"end_date,omitempty" db:"end_date"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	League *League `json:"league,omitempty" db:"-"`
}
