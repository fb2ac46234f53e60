package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaguehq/league-system/models"
)

var ErrCoachNotFound = errors.New("coach not found")

type CoachRepository interface {
	Create(ctx context.Context, coach *models.Coach) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Coach, error)
	List(ctx context.Context) ([]*models.Coach, error)
	Update(ctx context.Context, coach *models.Coach) error
	Delete(ctx context.Context, id int) error
}

type postgresCoachRepository struct {
	db *sql.DB
}

func NewPostgresCoachRepository(db *sql.DB) CoachRepository {
	return &postgresCoachRepository{db: db}
}

func (r *postgresCoachRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCoachRepository) Create(ctx context.Context, coach *models.Coach) error {
	query := `INSERT INTO coaches (first_name, last_name, nationality) VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		coach.FirstName, coach.LastName, coach.Nationality,
	).Scan(&coach.ID, &coach.CreatedAt)
}

func (r *postgresCoachRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Coach, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, first_name, last_name, nationality, created_at FROM coaches WHERE id = $1`

	var c models.Coach
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Nationality, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCoachRepository) List(ctx context.Context) ([]*models.Coach, error) {
	query := `SELECT id, first_name, last_name, nationality, created_at
		FROM coaches ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]*models.Coach, 0)
	for rows.Next() {
		var c models.Coach
		if scanErr := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Nationality, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		coaches = append(coaches, &c)
	}
	return coaches, rows.Err()
}

func (r *postgresCoachRepository) Update(ctx context.Context, coach *models.Coach) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE coaches SET first_name = $1, last_name = $2, nationality = $3 WHERE id = $4`,
		coach.FirstName, coach.LastName, coach.Nationality, coach.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCoachNotFound)
}

func (r *postgresCoachRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coaches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCoachNotFound)
}
