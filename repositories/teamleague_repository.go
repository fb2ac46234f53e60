package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/leaguehq/league-system/models"
)

var (
	ErrTeamLeagueNotFound = errors.New("team league membership not found")
	// Уникальные частичные индексы: одна текущая лига у команды и одна
	// текущая команда у тренера.
	ErrTeamLeagueCurrentConflict = errors.New("team already has a current league membership")
	ErrCoachAlreadyAssigned      = errors.New("coach is already assigned to another team")
)

type TeamLeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, membership *models.TeamLeague) error
	GetCurrentByTeam(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamLeague, error)
	ListCurrentByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.TeamLeague, error)
	AssignCoach(ctx context.Context, exec SQLExecutor, membershipID int, coachID *int) error
	CloseCurrent(ctx context.Context, exec SQLExecutor, teamID int) error
}

type postgresTeamLeagueRepository struct {
	db *sql.DB
}

func NewPostgresTeamLeagueRepository(db *sql.DB) TeamLeagueRepository {
	return &postgresTeamLeagueRepository{db: db}
}

func (r *postgresTeamLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamLeagueRepository) Create(ctx context.Context, exec SQLExecutor, membership *models.TeamLeague) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO team_leagues (team_id, league_id, coach_id, is_current, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		membership.TeamID, membership.LeagueID, membership.CoachID,
		membership.IsCurrent, membership.JoinedAt,
	).Scan(&membership.ID)

	return r.handleTeamLeagueError(err)
}

func (r *postgresTeamLeagueRepository) GetCurrentByTeam(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamLeague, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, team_id, league_id, coach_id, is_current, joined_at
		FROM team_leagues
		WHERE team_id = $1 AND is_current`

	var tl models.TeamLeague
	err := executor.QueryRowContext(ctx, query, teamID).Scan(
		&tl.ID, &tl.TeamID, &tl.LeagueID, &tl.CoachID, &tl.IsCurrent, &tl.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamLeagueNotFound
		}
		return nil, err
	}
	return &tl, nil
}

func (r *postgresTeamLeagueRepository) ListCurrentByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tl.id, tl.team_id, tl.league_id, tl.coach_id, tl.is_current, tl.joined_at,
		       t.id, t.name, t.city, t.founded_year, t.logo_key, t.created_at
		FROM team_leagues tl
		JOIN teams t ON tl.team_id = t.id
		WHERE tl.league_id = $1 AND tl.is_current
		ORDER BY t.name ASC`

	rows, err := executor.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]*models.TeamLeague, 0)
	for rows.Next() {
		var tl models.TeamLeague
		var team models.Team
		if scanErr := rows.Scan(
			&tl.ID, &tl.TeamID, &tl.LeagueID, &tl.CoachID, &tl.IsCurrent, &tl.JoinedAt,
			&team.ID, &team.Name, &team.City, &team.FoundedYear, &team.LogoKey, &team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tl.Team = &team
		memberships = append(memberships, &tl)
	}
	return memberships, rows.Err()
}

func (r *postgresTeamLeagueRepository) AssignCoach(ctx context.Context, exec SQLExecutor, membershipID int, coachID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE team_leagues SET coach_id = $1 WHERE id = $2`, coachID, membershipID,
	)
	if err != nil {
		return r.handleTeamLeagueError(err)
	}
	return checkAffectedRows(result, ErrTeamLeagueNotFound)
}

func (r *postgresTeamLeagueRepository) CloseCurrent(ctx context.Context, exec SQLExecutor, teamID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE team_leagues SET is_current = FALSE WHERE team_id = $1 AND is_current`, teamID,
	)
	return err
}

func (r *postgresTeamLeagueRepository) handleTeamLeagueError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "uq_team_leagues_current_team":
			return ErrTeamLeagueCurrentConflict
		case "uq_team_leagues_current_coach":
			return ErrCoachAlreadyAssigned
		}
	}
	return err
}
