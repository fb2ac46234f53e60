package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
	"github.com/leaguehq/league-system/storage"
)

var ErrLeagueNameTaken = errors.New("league with this name and season already exists")

type CreateLeagueInput struct {
	Name      string     `json:"name"`
	Country   *string    `json:"country"`
	Season    *string    `json:"season"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type UpdateLeagueInput struct {
	Name      *string    `json:"name"`
	Country   *string    `json:"country"`
	Season    *string    `json:"season"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type LeagueService interface {
	Create(ctx context.Context, input CreateLeagueInput) (*models.League, error)
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	Update(ctx context.Context, id int, input UpdateLeagueInput) (*models.League, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.League, error)
	Members(ctx context.Context, id int) ([]*models.TeamLeague, error)
}

type leagueService struct {
	leagueRepo     repositories.LeagueRepository
	teamLeagueRepo repositories.TeamLeagueRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	teamLeagueRepo repositories.TeamLeagueRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) LeagueService {
	return &leagueService{
		leagueRepo:     leagueRepo,
		teamLeagueRepo: teamLeagueRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *leagueService) Create(ctx context.Context, input CreateLeagueInput) (*models.League, error) {
	league := &models.League{
		Name:      input.Name,
		Country:   input.Country,
		Season:    input.Season,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		if errors.Is(err, repositories.ErrLeagueNameConflict) {
			return nil, ErrLeagueNameTaken
		}
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

func (s *leagueService) GetByID(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	populateLeagueLogoURL(league, s.uploader)
	return league, nil
}

func (s *leagueService) List(ctx context.Context) ([]*models.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, league := range leagues {
		populateLeagueLogoURL(league, s.uploader)
	}
	return leagues, nil
}

func (s *leagueService) Update(ctx context.Context, id int, input UpdateLeagueInput) (*models.League, error) {
	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		league.Name = *input.Name
	}
	if input.Country != nil {
		league.Country = input.Country
	}
	if input.Season != nil {
		league.Season = input.Season
	}
	if input.StartDate != nil {
		league.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		league.EndDate = input.EndDate
	}

	if err := s.leagueRepo.Update(ctx, league); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return nil, ErrLeagueNotFound
		case errors.Is(err, repositories.ErrLeagueNameConflict):
			return nil, ErrLeagueNameTaken
		}
		return nil, err
	}
	return league, nil
}

func (s *leagueService) Delete(ctx context.Context, id int) error {
	err := s.leagueRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrLeagueNotFound) {
		return ErrLeagueNotFound
	}
	return err
}

func (s *leagueService) UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.League, error) {
	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("leagues/%d/logo%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload league logo: %w", err)
	}
	if err := s.leagueRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}

	league.LogoKey = &key
	populateLeagueLogoURL(league, s.uploader)
	s.logger.Info("league logo uploaded", slog.Int("league_id", id), slog.String("key", key))
	return league, nil
}

// Members возвращает текущих участников лиги вместе с данными команд.
func (s *leagueService) Members(ctx context.Context, id int) ([]*models.TeamLeague, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	memberships, err := s.teamLeagueRepo.ListCurrentByLeague(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	for _, membership := range memberships {
		populateTeamLogoURL(membership.Team, s.uploader)
	}
	return memberships, nil
}
