package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type CoachInput struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Nationality *string `json:"nationality"`
}

type CoachService interface {
	Create(ctx context.Context, input CoachInput) (*models.Coach, error)
	GetByID(ctx context.Context, id int) (*models.Coach, error)
	List(ctx context.Context) ([]*models.Coach, error)
	Update(ctx context.Context, id int, input CoachInput) (*models.Coach, error)
	Delete(ctx context.Context, id int) error
}

type coachService struct {
	coachRepo repositories.CoachRepository
}

func NewCoachService(coachRepo repositories.CoachRepository) CoachService {
	return &coachService{coachRepo: coachRepo}
}

func (s *coachService) Create(ctx context.Context, input CoachInput) (*models.Coach, error) {
	coach := &models.Coach{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Nationality: input.Nationality,
	}
	if err := s.coachRepo.Create(ctx, coach); err != nil {
		return nil, fmt.Errorf("failed to create coach: %w", err)
	}
	return coach, nil
}

func (s *coachService) GetByID(ctx context.Context, id int) (*models.Coach, error) {
	coach, err := s.coachRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

func (s *coachService) List(ctx context.Context) ([]*models.Coach, error) {
	return s.coachRepo.List(ctx)
}

func (s *coachService) Update(ctx context.Context, id int, input CoachInput) (*models.Coach, error) {
	coach, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	coach.FirstName = input.FirstName
	coach.LastName = input.LastName
	coach.Nationality = input.Nationality

	if err := s.coachRepo.Update(ctx, coach); err != nil {
		if errors.Is(err, repositories.ErrCoachNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

func (s *coachService) Delete(ctx context.Context, id int) error {
	err := s.coachRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrCoachNotFound) {
		return ErrCoachNotFound
	}
	return err
}
