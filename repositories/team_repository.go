package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/leaguehq/league-system/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, city, founded_year)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, team.Name, team.City, team.FoundedYear).
		Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, city, founded_year, logo_key, created_at FROM teams WHERE id = $1`

	var t models.Team
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.City, &t.FoundedYear, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT id, name, city, founded_year, logo_key, created_at FROM teams ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.City, &t.FoundedYear, &t.LogoKey, &t.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = $1, city = $2, founded_year = $3 WHERE id = $4`,
		team.Name, team.City, team.FoundedYear, team.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
