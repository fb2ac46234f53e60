package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type TransferInput struct {
	PlayerID     int                 `json:"player_id"`
	ToTeamID     int                 `json:"to_team_id"`
	TransferDate time.Time           `json:"transfer_date"`
	Type         models.TransferType `json:"transfer_type"`
}

// TransferService выполняет переход игрока как один атомарный шаг: закрытие
// (или удаление) старой записи состава, запись в историю переходов и новая
// текущая запись состава фиксируются одной транзакцией.
type TransferService interface {
	Transfer(ctx context.Context, input TransferInput) (*models.Transfer, error)
	History(ctx context.Context, playerID int) ([]*models.Transfer, error)
}

type transferService struct {
	txManager      repositories.TxManager
	playerRepo     repositories.PlayerRepository
	teamRepo       repositories.TeamRepository
	rosterRepo     repositories.RosterRepository
	teamLeagueRepo repositories.TeamLeagueRepository
	transferRepo   repositories.TransferRepository
	logger         *slog.Logger
}

func NewTransferService(
	txManager repositories.TxManager,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	rosterRepo repositories.RosterRepository,
	teamLeagueRepo repositories.TeamLeagueRepository,
	transferRepo repositories.TransferRepository,
	logger *slog.Logger,
) TransferService {
	return &transferService{
		txManager:      txManager,
		playerRepo:     playerRepo,
		teamRepo:       teamRepo,
		rosterRepo:     rosterRepo,
		teamLeagueRepo: teamLeagueRepo,
		transferRepo:   transferRepo,
		logger:         logger,
	}
}

func (s *transferService) Transfer(ctx context.Context, input TransferInput) (*models.Transfer, error) {
	if input.PlayerID == 0 || input.ToTeamID == 0 || input.TransferDate.IsZero() {
		return nil, ErrTransferFieldsMissing
	}
	if input.Type != models.TransferPermanent && input.Type != models.TransferLoan {
		return nil, fmt.Errorf("%w: %q", ErrTransferTypeInvalid, input.Type)
	}

	var transfer *models.Transfer

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player, err := s.playerRepo.GetByID(ctx, exec, input.PlayerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: id %d", ErrPlayerNotFound, input.PlayerID)
			}
			return err
		}

		toTeam, err := s.teamRepo.GetByID(ctx, exec, input.ToTeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return fmt.Errorf("%w: id %d", ErrTeamNotFound, input.ToTeamID)
			}
			return err
		}

		// Переход возможен только в команду с текущей лигой: запись истории
		// требует лигу назначения.
		toMembership, err := s.teamLeagueRepo.GetCurrentByTeam(ctx, exec, toTeam.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamLeagueNotFound) {
				return fmt.Errorf("%w: team %q", ErrTeamWithoutLeague, toTeam.Name)
			}
			return err
		}

		var fromTeamID *int
		var fromLeagueID *int

		current, err := s.rosterRepo.GetCurrentByPlayer(ctx, exec, player.ID)
		switch {
		case err == nil:
			if current.TeamID == input.ToTeamID {
				return fmt.Errorf("%w: player %d, team %q", ErrSameTeamTransfer, player.ID, toTeam.Name)
			}
			fromTeamID = &current.TeamID
			if fromMembership, mErr := s.teamLeagueRepo.GetCurrentByTeam(ctx, exec, current.TeamID); mErr == nil {
				fromLeagueID = &fromMembership.LeagueID
			} else if !errors.Is(mErr, repositories.ErrTeamLeagueNotFound) {
				return mErr
			}

			// Постоянный переход стирает старую привязку, аренда закрывает
			// её с датой окончания.
			if input.Type == models.TransferPermanent {
				if dErr := s.rosterRepo.Delete(ctx, exec, current.ID); dErr != nil {
					return dErr
				}
			} else {
				if cErr := s.rosterRepo.Close(ctx, exec, current.ID, input.TransferDate); cErr != nil {
					return cErr
				}
			}
		case errors.Is(err, repositories.ErrRosterEntryNotFound):
			// Первый контракт игрока: истории нет, закрывать нечего.
		default:
			return err
		}

		transfer = &models.Transfer{
			PlayerID:     player.ID,
			FromTeamID:   fromTeamID,
			ToTeamID:     toTeam.ID,
			LeagueID:     toMembership.LeagueID,
			FromLeagueID: fromLeagueID,
			TransferDate: input.TransferDate,
			TransferType: input.Type,
		}
		if err := s.transferRepo.Create(ctx, exec, transfer); err != nil {
			return err
		}

		entry := &models.RosterEntry{
			PlayerID:  player.ID,
			TeamID:    toTeam.ID,
			StartDate: input.TransferDate,
			IsCurrent: true,
		}
		if err := s.rosterRepo.Create(ctx, exec, entry); err != nil {
			if errors.Is(err, repositories.ErrRosterCurrentConflict) {
				// Параллельный перевод того же игрока успел раньше.
				return fmt.Errorf("%w: player %d", ErrTransferConflict, player.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player transferred",
		slog.Int("player_id", transfer.PlayerID),
		slog.Int("to_team_id", transfer.ToTeamID),
		slog.String("type", string(transfer.TransferType)),
	)
	return transfer, nil
}

func (s *transferService) History(ctx context.Context, playerID int) ([]*models.Transfer, error) {
	transfers, err := s.transferRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers for player %d: %w", playerID, err)
	}
	return transfers, nil
}
