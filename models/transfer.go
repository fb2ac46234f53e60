package models

import "time"

type TransferType string

const (
	TransferPermanent TransferType = "permanent"
	TransferLoan      TransferType = "loan"
)

// Transfer — неизменяемая запись истории перехода игрока.
type Transfer struct {
	ID           int          `json:"id" db:"id"`
	PlayerID     int          `json:"player_id" db:"player_id"`
	FromTeamID   *int         `json:"from_team_id,omitempty" db:"from_team_id"`
	ToTeamID     int          `json:"to_team_id" db:"to_team_id"`
	LeagueID     int          `json:"league_id" db:"league_id"`
	FromLeagueID *int         `json:"from_league_id,omitempty" db:"from_league_id"`
	TransferDate time.Time    `json:"transfer_date" db:"transfer_date"`
	TransferType TransferType `json:"transfer_type" db:"transfer_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
