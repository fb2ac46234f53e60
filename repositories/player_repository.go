package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaguehq/league-system/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (first_name, last_name, birth_date, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		player.FirstName, player.LastName, player.BirthDate, player.Position,
	).Scan(&player.ID, &player.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, first_name, last_name, birth_date, position, created_at FROM players WHERE id = $1`

	var p models.Player
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Position, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT id, first_name, last_name, birth_date, position, created_at
		FROM players ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Position, &p.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE players SET first_name = $1, last_name = $2, birth_date = $3, position = $4 WHERE id = $5`,
		player.FirstName, player.LastName, player.BirthDate, player.Position, player.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
