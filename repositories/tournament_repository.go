package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaguehq/league-system/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, league_id, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		tournament.Name, tournament.LeagueID, tournament.Status,
		tournament.StartDate, tournament.EndDate,
	).Scan(&tournament.ID, &tournament.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, league_id, status, start_date, end_date, created_at
		FROM tournaments WHERE id = $1`

	var t models.Tournament
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.LeagueID, &t.Status, &t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT id, name, league_id, status, start_date, end_date, created_at
		FROM tournaments ORDER BY start_date DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.LeagueID, &t.Status, &t.StartDate, &t.EndDate, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	query := `UPDATE tournaments SET name = $1, league_id = $2, status = $3, start_date = $4, end_date = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		tournament.Name, tournament.LeagueID, tournament.Status,
		tournament.StartDate, tournament.EndDate, tournament.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
