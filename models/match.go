package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// Match ссылается ровно на одно из league_id/tournament_id (CHECK в БД).
type Match struct {
	ID           int         `json:"id" db:"id"`
	Team1ID      int         `json:"team1_id" db:"team1_id"`
	Team2ID      int         `json:"team2_id" db:"team2_id"`
	LeagueID     *int        `json:"league_id,omitempty" db:"league_id"`
	TournamentID *int        `json:"tournament_id,omitempty" db:"tournament_id"`
	VenueID      *int        `json:"venue_id,omitempty" db:"venue_id"`
	RefereeID    *int        `json:"referee_id,omitempty" db:"referee_id"`
	MatchDate    time.Time   `json:"match_date" db:"match_date"`
	MatchTime    string      `json:"match_time" db:"match_time"`
	Status       MatchStatus `json:"status" db:"status"`
	Team1Score   *int        `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int        `json:"team2_score,omitempty" db:"team2_score"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	Team1 *Team `json:"team1,omitempty" db:"-"`
	Team2 *Team `json:"team2,omitempty" db:"-"`
}

// IsTerminal сообщает, закрыт ли матч для изменений расписания.
func (m *Match) IsTerminal() bool {
	return m.Status == MatchCompleted || m.Status == MatchCancelled
}

// InvolvesTeam проверяет участие команды в матче.
func (m *Match) InvolvesTeam(teamID int) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}
