package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/leaguehq/league-system/models"
)

var (
	ErrRosterEntryNotFound = errors.New("roster entry not found")
	// Частичный уникальный индекс uq_player_teams_current_player — страховка
	// от двух конкурентных трансферов одного игрока.
	ErrRosterCurrentConflict = errors.New("player already has a current roster entry")
)

type RosterRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.RosterEntry) error
	GetCurrentByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (*models.RosterEntry, error)
	ListCurrentByTeam(ctx context.Context, teamID int) ([]*models.RosterEntry, error)
	CountCurrentByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
	Close(ctx context.Context, exec SQLExecutor, entryID int, endDate time.Time) error
	Delete(ctx context.Context, exec SQLExecutor, entryID int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.RosterEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_teams (player_id, team_id, start_date, end_date, is_current)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		entry.PlayerID, entry.TeamID, entry.StartDate, entry.EndDate, entry.IsCurrent,
	).Scan(&entry.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" &&
			pqErr.Constraint == "uq_player_teams_current_player" {
			return ErrRosterCurrentConflict
		}
		return err
	}
	return nil
}

func (r *postgresRosterRepository) GetCurrentByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (*models.RosterEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, player_id, team_id, start_date, end_date, is_current
		FROM player_teams
		WHERE player_id = $1 AND is_current`

	var entry models.RosterEntry
	err := executor.QueryRowContext(ctx, query, playerID).Scan(
		&entry.ID, &entry.PlayerID, &entry.TeamID, &entry.StartDate, &entry.EndDate, &entry.IsCurrent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *postgresRosterRepository) ListCurrentByTeam(ctx context.Context, teamID int) ([]*models.RosterEntry, error) {
	query := `
		SELECT pt.id, pt.player_id, pt.team_id, pt.start_date, pt.end_date, pt.is_current,
		       p.id, p.first_name, p.last_name, p.birth_date, p.position, p.created_at
		FROM player_teams pt
		JOIN players p ON pt.player_id = p.id
		WHERE pt.team_id = $1 AND pt.is_current
		ORDER BY p.last_name ASC, p.first_name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		var player models.Player
		if scanErr := rows.Scan(
			&entry.ID, &entry.PlayerID, &entry.TeamID, &entry.StartDate, &entry.EndDate, &entry.IsCurrent,
			&player.ID, &player.FirstName, &player.LastName, &player.BirthDate, &player.Position, &player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entry.Player = &player
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *postgresRosterRepository) CountCurrentByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM player_teams WHERE team_id = $1 AND is_current`, teamID,
	).Scan(&count)
	return count, err
}

func (r *postgresRosterRepository) Close(ctx context.Context, exec SQLExecutor, entryID int, endDate time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE player_teams SET is_current = FALSE, end_date = $1 WHERE id = $2`,
		endDate, entryID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}

func (r *postgresRosterRepository) Delete(ctx context.Context, exec SQLExecutor, entryID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM player_teams WHERE id = $1`, entryID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}
