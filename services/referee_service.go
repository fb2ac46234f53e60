package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type RefereeInput struct {
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	CertificationLevel *string `json:"certification_level"`
}

type RefereeService interface {
	Create(ctx context.Context, input RefereeInput) (*models.Referee, error)
	GetByID(ctx context.Context, id int) (*models.Referee, error)
	List(ctx context.Context) ([]*models.Referee, error)
	Update(ctx context.Context, id int, input RefereeInput) (*models.Referee, error)
	Delete(ctx context.Context, id int) error
}

type refereeService struct {
	refereeRepo repositories.RefereeRepository
}

func NewRefereeService(refereeRepo repositories.RefereeRepository) RefereeService {
	return &refereeService{refereeRepo: refereeRepo}
}

func (s *refereeService) Create(ctx context.Context, input RefereeInput) (*models.Referee, error) {
	referee := &models.Referee{
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		CertificationLevel: input.CertificationLevel,
	}
	if err := s.refereeRepo.Create(ctx, referee); err != nil {
		return nil, fmt.Errorf("failed to create referee: %w", err)
	}
	return referee, nil
}

func (s *refereeService) GetByID(ctx context.Context, id int) (*models.Referee, error) {
	referee, err := s.refereeRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRefereeNotFound) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return referee, nil
}

func (s *refereeService) List(ctx context.Context) ([]*models.Referee, error) {
	return s.refereeRepo.List(ctx)
}

func (s *refereeService) Update(ctx context.Context, id int, input RefereeInput) (*models.Referee, error) {
	referee, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	referee.FirstName = input.FirstName
	referee.LastName = input.LastName
	referee.CertificationLevel = input.CertificationLevel

	if err := s.refereeRepo.Update(ctx, referee); err != nil {
		if errors.Is(err, repositories.ErrRefereeNotFound) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return referee, nil
}

func (s *refereeService) Delete(ctx context.Context, id int) error {
	err := s.refereeRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrRefereeNotFound) {
		return ErrRefereeNotFound
	}
	return err
}
