package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaguehq/league-system/models"
)

var ErrMatchStatsNotFound = errors.New("match stats not found")

// MatchStatsRepository — командные результаты матча, ключ (match_id, team_id).
// Upsert, чтобы повторное завершение матча перезаписывало, а не дублировало.
type MatchStatsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.MatchStats) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchStats, error)
}

type postgresMatchStatsRepository struct {
	db *sql.DB
}

func NewPostgresMatchStatsRepository(db *sql.DB) MatchStatsRepository {
	return &postgresMatchStatsRepository{db: db}
}

func (r *postgresMatchStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, stats *models.MatchStats) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_stats (match_id, team_id, score, possession)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, team_id)
		DO UPDATE SET score = EXCLUDED.score, possession = EXCLUDED.possession
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		stats.MatchID, stats.TeamID, stats.Score, stats.Possession,
	).Scan(&stats.ID)
}

func (r *postgresMatchStatsRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchStats, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, match_id, team_id, score, possession FROM match_stats WHERE match_id = $1 ORDER BY team_id ASC`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*models.MatchStats, 0)
	for rows.Next() {
		var s models.MatchStats
		if scanErr := rows.Scan(&s.ID, &s.MatchID, &s.TeamID, &s.Score, &s.Possession); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// PlayerStatsRepository — вклад игрока в матч, ключ (player_id, match_id).
type PlayerStatsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.PlayerStats) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.PlayerStats, error)
	ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStats, error)
}

type postgresPlayerStatsRepository struct {
	db *sql.DB
}

func NewPostgresPlayerStatsRepository(db *sql.DB) PlayerStatsRepository {
	return &postgresPlayerStatsRepository{db: db}
}

func (r *postgresPlayerStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, stats *models.PlayerStats) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_stats (player_id, match_id, league_id, goals, assists, won)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, match_id)
		DO UPDATE SET league_id = EXCLUDED.league_id, goals = EXCLUDED.goals,
		              assists = EXCLUDED.assists, won = EXCLUDED.won
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		stats.PlayerID, stats.MatchID, stats.LeagueID, stats.Goals, stats.Assists, stats.Won,
	).Scan(&stats.ID)
}

func (r *postgresPlayerStatsRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.PlayerStats, error) {
	return r.list(ctx, `match_id`, matchID)
}

func (r *postgresPlayerStatsRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStats, error) {
	return r.list(ctx, `player_id`, playerID)
}

func (r *postgresPlayerStatsRepository) list(ctx context.Context, column string, id int) ([]*models.PlayerStats, error) {
	query := `SELECT id, player_id, match_id, league_id, goals, assists, won
		FROM player_stats WHERE ` + column + ` = $1 ORDER BY match_id ASC, player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*models.PlayerStats, 0)
	for rows.Next() {
		var s models.PlayerStats
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.MatchID, &s.LeagueID, &s.Goals, &s.Assists, &s.Won); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}
