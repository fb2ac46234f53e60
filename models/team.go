package models

import "time"

type Team struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	City        *string   `json:"city,omitempty" db:"city"`
	FoundedYear *int      `json:"founded_year,omitempty" db:"founded_year"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// TeamLeague — членство команды в лиге с текущим назначением тренера.
type TeamLeague struct {
	ID        int       `json:"id" db:"id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	CoachID   *int      `json:"coach_id,omitempty" db:"coach_id"`
	IsCurrent bool      `json:"is_current" db:"is_current"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`

	Team   *Team   `json:"team,omitempty" db:"-"`
	League *League `json:"league,omitempty" db:"-"`
	Coach  *Coach  `json:"coach,omitempty" db:"-"`
}
