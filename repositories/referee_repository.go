package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaguehq/league-system/models"
)

var ErrRefereeNotFound = errors.New("referee not found")

type RefereeRepository interface {
	Create(ctx context.Context, referee *models.Referee) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Referee, error)
	List(ctx context.Context) ([]*models.Referee, error)
	Update(ctx context.Context, referee *models.Referee) error
	Delete(ctx context.Context, id int) error
}

type postgresRefereeRepository struct {
	db *sql.DB
}

func NewPostgresRefereeRepository(db *sql.DB) RefereeRepository {
	return &postgresRefereeRepository{db: db}
}

func (r *postgresRefereeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRefereeRepository) Create(ctx context.Context, referee *models.Referee) error {
	query := `INSERT INTO referees (first_name, last_name, certification_level) VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		referee.FirstName, referee.LastName, referee.CertificationLevel,
	).Scan(&referee.ID, &referee.CreatedAt)
}

func (r *postgresRefereeRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Referee, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, first_name, last_name, certification_level, created_at FROM referees WHERE id = $1`

	var ref models.Referee
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&ref.ID, &ref.FirstName, &ref.LastName, &ref.CertificationLevel, &ref.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *postgresRefereeRepository) List(ctx context.Context) ([]*models.Referee, error) {
	query := `SELECT id, first_name, last_name, certification_level, created_at
		FROM referees ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referees := make([]*models.Referee, 0)
	for rows.Next() {
		var ref models.Referee
		if scanErr := rows.Scan(&ref.ID, &ref.FirstName, &ref.LastName, &ref.CertificationLevel, &ref.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		referees = append(referees, &ref)
	}
	return referees, rows.Err()
}

func (r *postgresRefereeRepository) Update(ctx context.Context, referee *models.Referee) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE referees SET first_name = $1, last_name = $2, certification_level = $3 WHERE id = $4`,
		referee.FirstName, referee.LastName, referee.CertificationLevel, referee.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRefereeNotFound)
}

func (r *postgresRefereeRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM referees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRefereeNotFound)
}
