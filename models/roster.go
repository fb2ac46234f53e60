package models

import "time"

// RosterEntry связывает игрока с командой на интервале [StartDate, EndDate].
// Инвариант: у игрока не более одной записи с IsCurrent = true; переходы
// IsCurrent выполняет только transfer workflow.
type RosterEntry struct {
	ID        int        `json:"id" db:"id"`
	PlayerID  int        `json:"player_id" db:"player_id"`
	TeamID    int        `json:"team_id" db:"team_id"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	IsCurrent bool       `json:"is_current" db:"is_current"`

	Player *Player `json:"player,omitempty" db:"-"`
	Team   *Team   `json:"team,omitempty" db:"-"`
}
