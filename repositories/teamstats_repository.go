package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/leaguehq/league-system/models"
)

var ErrTeamStatsNotFound = errors.New("team stats not found")

type TeamStatsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.TeamStats) error
	ListByLeague(ctx context.Context, leagueID int) ([]*models.TeamStats, error)
	DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresTeamStatsRepository struct {
	db *sql.DB
}

func NewPostgresTeamStatsRepository(db *sql.DB) TeamStatsRepository {
	return &postgresTeamStatsRepository{db: db}
}

func (r *postgresTeamStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, stats *models.TeamStats) error {
	executor := r.getExecutor(exec)
	if stats.UpdatedAt.IsZero() {
		stats.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO team_stats
			(team_id, league_id, games_played, wins, draws, losses,
			 goals_for, goals_against, goal_difference, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (team_id, league_id)
		DO UPDATE SET
			games_played = EXCLUDED.games_played, wins = EXCLUDED.wins,
			draws = EXCLUDED.draws, losses = EXCLUDED.losses,
			goals_for = EXCLUDED.goals_for, goals_against = EXCLUDED.goals_against,
			goal_difference = EXCLUDED.goal_difference, points = EXCLUDED.points,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		stats.TeamID, stats.LeagueID, stats.GamesPlayed, stats.Wins, stats.Draws, stats.Losses,
		stats.GoalsFor, stats.GoalsAgainst, stats.GoalDifference, stats.Points, stats.UpdatedAt,
	).Scan(&stats.ID)
}

func (r *postgresTeamStatsRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.TeamStats, error) {
	query := `
		SELECT ts.id, ts.team_id, ts.league_id, ts.games_played, ts.wins, ts.draws, ts.losses,
		       ts.goals_for, ts.goals_against, ts.goal_difference, ts.points, ts.updated_at,
		       t.id, t.name, t.city, t.founded_year, t.logo_key, t.created_at
		FROM team_stats ts
		JOIN teams t ON ts.team_id = t.id
		WHERE ts.league_id = $1
		ORDER BY ts.points DESC, ts.goal_difference DESC, ts.goals_for DESC, ts.team_id ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.TeamStats, 0)
	for rows.Next() {
		var s models.TeamStats
		var team models.Team
		if scanErr := rows.Scan(
			&s.ID, &s.TeamID, &s.LeagueID, &s.GamesPlayed, &s.Wins, &s.Draws, &s.Losses,
			&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.Points, &s.UpdatedAt,
			&team.ID, &team.Name, &team.City, &team.FoundedYear, &team.LogoKey, &team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		s.Team = &team
		standings = append(standings, &s)
	}
	return standings, rows.Err()
}

func (r *postgresTeamStatsRepository) DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM team_stats WHERE league_id = $1`, leagueID)
	return err
}
