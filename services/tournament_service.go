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

type CreateTournamentInput struct {
	Name      string     `json:"name"`
	LeagueID  *int       `json:"league_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type UpdateTournamentInput struct {
	Name      *string                  `json:"name"`
	LeagueID  *int                     `json:"league_id"`
	Status    *models.TournamentStatus `json:"status"`
	StartDate *time.Time               `json:"start_date"`
	EndDate   *time.Time               `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	AutoUpdateStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, logger: logger}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	tournament := &models.Tournament{
		Name:      input.Name,
		LeagueID:  input.LeagueID,
		Status:    models.TournamentUpcoming,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if !input.StartDate.After(time.Now()) {
		tournament.Status = models.TournamentActive
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		tournament.Name = *input.Name
	}
	if input.LeagueID != nil {
		tournament.LeagueID = input.LeagueID
	}
	if input.Status != nil {
		tournament.Status = *input.Status
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = input.EndDate
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

// AutoUpdateStatusesByDates прогоняется фоновым планировщиком: upcoming
// становится active после даты старта, active становится completed после
// даты окончания. Отменённые турниры не трогаются.
func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tournaments: %w", err)
	}

	now := time.Now()
	for _, tournament := range tournaments {
		next := tournament.Status
		switch tournament.Status {
		case models.TournamentUpcoming:
			if !tournament.StartDate.After(now) {
				next = models.TournamentActive
			}
		case models.TournamentActive:
			if tournament.EndDate != nil && tournament.EndDate.Before(now) {
				next = models.TournamentCompleted
			}
		}
		if next == tournament.Status {
			continue
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, tournament.ID, next); err != nil {
			s.logger.Error("failed to auto-update tournament status",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament status auto-updated",
			slog.Int("tournament_id", tournament.ID),
			slog.String("from", string(tournament.Status)),
			slog.String("to", string(next)),
		)
	}
	return nil
}
