package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type CreatePlayerInput struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	BirthDate *time.Time `json:"birth_date"`
	Position  *string    `json:"position"`
}

type UpdatePlayerInput struct {
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	BirthDate *time.Time `json:"birth_date"`
	Position  *string    `json:"position"`
}

type PlayerService interface {
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	rosterRepo repositories.RosterRepository
	teamRepo   repositories.TeamRepository
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		rosterRepo: rosterRepo,
		teamRepo:   teamRepo,
	}
}

func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	player := &models.Player{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		BirthDate: input.BirthDate,
		Position:  input.Position,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	// Текущая команда подгружается по записи состава, её отсутствие не ошибка.
	if entry, rErr := s.rosterRepo.GetCurrentByPlayer(ctx, nil, id); rErr == nil {
		if team, tErr := s.teamRepo.GetByID(ctx, nil, entry.TeamID); tErr == nil {
			player.CurrentTeam = team
		}
	} else if !errors.Is(rErr, repositories.ErrRosterEntryNotFound) {
		return nil, rErr
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}

func (s *playerService) Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		player.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		player.LastName = *input.LastName
	}
	if input.BirthDate != nil {
		player.BirthDate = input.BirthDate
	}
	if input.Position != nil {
		player.Position = input.Position
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	err := s.playerRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}
