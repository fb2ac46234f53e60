package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaguehq/league-system/models"
)

var ErrTransferNotFound = errors.New("transfer not found")

// TransferRepository — только append и чтение: история переходов неизменяема.
type TransferRepository interface {
	Create(ctx context.Context, exec SQLExecutor, transfer *models.Transfer) error
	ListByPlayer(ctx context.Context, playerID int) ([]*models.Transfer, error)
}

type postgresTransferRepository struct {
	db *sql.DB
}

func NewPostgresTransferRepository(db *sql.DB) TransferRepository {
	return &postgresTransferRepository{db: db}
}

func (r *postgresTransferRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTransferRepository) Create(ctx context.Context, exec SQLExecutor, transfer *models.Transfer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO transfers
			(player_id, from_team_id, to_team_id, league_id, from_league_id, transfer_date, transfer_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		transfer.PlayerID, transfer.FromTeamID, transfer.ToTeamID,
		transfer.LeagueID, transfer.FromLeagueID, transfer.TransferDate, transfer.TransferType,
	).Scan(&transfer.ID, &transfer.CreatedAt)
}

func (r *postgresTransferRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.Transfer, error) {
	query := `
		SELECT id, player_id, from_team_id, to_team_id, league_id, from_league_id,
		       transfer_date, transfer_type, created_at
		FROM transfers
		WHERE player_id = $1
		ORDER BY transfer_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]*models.Transfer, 0)
	for rows.Next() {
		var t models.Transfer
		if scanErr := rows.Scan(
			&t.ID, &t.PlayerID, &t.FromTeamID, &t.ToTeamID, &t.LeagueID, &t.FromLeagueID,
			&t.TransferDate, &t.TransferType, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		transfers = append(transfers, &t)
	}
	return transfers, rows.Err()
}
