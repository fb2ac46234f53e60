package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/leaguehq/league-system/models"
)

var (
	ErrLeagueNotFound     = errors.New("league not found")
	ErrLeagueNameConflict = errors.New("league with this name and season already exists")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	Update(ctx context.Context, league *models.League) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, country, season, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.Name, league.Country, league.Season, league.StartDate, league.EndDate,
	).Scan(&league.ID, &league.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrLeagueNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, country, season, start_date, end_date, logo_key, created_at
		FROM leagues WHERE id = $1`

	var l models.League
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.Country, &l.Season, &l.StartDate, &l.EndDate, &l.LogoKey, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `SELECT id, name, country, season, start_date, end_date, logo_key, created_at
		FROM leagues ORDER BY start_date DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		var l models.League
		if scanErr := rows.Scan(
			&l.ID, &l.Name, &l.Country, &l.Season, &l.StartDate, &l.EndDate, &l.LogoKey, &l.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		leagues = append(leagues, &l)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) Update(ctx context.Context, league *models.League) error {
	query := `UPDATE leagues SET name = $1, country = $2, season = $3, start_date = $4, end_date = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		league.Name, league.Country, league.Season, league.StartDate, league.EndDate, league.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrLeagueNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE leagues SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leagues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}
