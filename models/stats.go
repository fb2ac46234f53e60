package models

import "time"

// MatchStats — результат команды в матче, ключ (match_id, team_id).
type MatchStats struct {
	ID         int  `json:"id" db:"id"`
	MatchID    int  `json:"match_id" db:"match_id"`
	TeamID     int  `json:"team_id" db:"team_id"`
	Score      int  `json:"score" db:"score"`
	Possession *int `json:"possession,omitempty" db:"possession"`
}

// PlayerStats — вклад игрока в матч, ключ (player_id, match_id).
type PlayerStats struct {
	ID       int  `json:"id" db:"id"`
	PlayerID int  `json:"player_id" db:"player_id"`
	MatchID  int  `json:"match_id" db:"match_id"`
	LeagueID *int `json:"league_id,omitempty" db:"league_id"`
	Goals    int  `json:"goals" db:"goals"`
	Assists  int  `json:"assists" db:"assists"`
	Won      bool `json:"won" db:"won"`
}

// TeamStats — производная строка таблицы лиги; пересчитывается из завершённых
// матчей и никогда не является источником истины по счёту.
type TeamStats struct {
	ID             int       `json:"id" db:"id"`
	TeamID         int       `json:"team_id" db:"team_id"`
	LeagueID       int       `json:"league_id" db:"league_id"`
	GamesPlayed    int       `json:"games_played" db:"games_played"`
	Wins           int       `json:"wins" db:"wins"`
	Draws          int       `json:"draws" db:"draws"`
	Losses         int       `json:"losses" db:"losses"`
	GoalsFor       int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int       `json:"goals_against" db:"goals_against"`
	GoalDifference int       `json:"goal_difference" db:"goal_difference"`
	Points         int       `json:"points" db:"points"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
