package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/leaguehq/league-system/models"
)

var (
	ErrVenueNotFound     = errors.New("venue not found")
	ErrVenueNameConflict = errors.New("venue name is already in use")
)

type VenueRepository interface {
	Create(ctx context.Context, venue *models.Venue) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Venue, error)
	List(ctx context.Context) ([]*models.Venue, error)
	Update(ctx context.Context, venue *models.Venue) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresVenueRepository struct {
	db *sql.DB
}

func NewPostgresVenueRepository(db *sql.DB) VenueRepository {
	return &postgresVenueRepository{db: db}
}

func (r *postgresVenueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresVenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	query := `INSERT INTO venues (name, city, capacity) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, venue.Name, venue.City, venue.Capacity).
		Scan(&venue.ID, &venue.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrVenueNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresVenueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Venue, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, city, capacity, photo_key, created_at FROM venues WHERE id = $1`

	var v models.Venue
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Name, &v.City, &v.Capacity, &v.PhotoKey, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *postgresVenueRepository) List(ctx context.Context) ([]*models.Venue, error) {
	query := `SELECT id, name, city, capacity, photo_key, created_at FROM venues ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]*models.Venue, 0)
	for rows.Next() {
		var v models.Venue
		if scanErr := rows.Scan(&v.ID, &v.Name, &v.City, &v.Capacity, &v.PhotoKey, &v.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		venues = append(venues, &v)
	}
	return venues, rows.Err()
}

func (r *postgresVenueRepository) Update(ctx context.Context, venue *models.Venue) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name = $1, city = $2, capacity = $3 WHERE id = $4`,
		venue.Name, venue.City, venue.Capacity, venue.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrVenueNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}

func (r *postgresVenueRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE venues SET photo_key = $1 WHERE id = $2`, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}

func (r *postgresVenueRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}
