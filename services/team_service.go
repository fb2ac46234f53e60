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

var (
	ErrTeamNameTaken      = errors.New("team name is already in use")
	ErrTeamAlreadyInLeague = errors.New("team already has a current league membership")
	ErrCoachTaken          = errors.New("coach is already assigned to another team")
)

type CreateTeamInput struct {
	Name        string  `json:"name"`
	City        *string `json:"city"`
	FoundedYear *int    `json:"founded_year"`
}

type UpdateTeamInput struct {
	Name        *string `json:"name"`
	City        *string `json:"city"`
	FoundedYear *int    `json:"founded_year"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Team, error)
	Roster(ctx context.Context, id int) ([]*models.RosterEntry, error)
	JoinLeague(ctx context.Context, teamID, leagueID int) (*models.TeamLeague, error)
	AssignCoach(ctx context.Context, teamID int, coachID *int) (*models.TeamLeague, error)
}

type teamService struct {
	txManager      repositories.TxManager
	teamRepo       repositories.TeamRepository
	leagueRepo     repositories.LeagueRepository
	coachRepo      repositories.CoachRepository
	teamLeagueRepo repositories.TeamLeagueRepository
	rosterRepo     repositories.RosterRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTeamService(
	txManager repositories.TxManager,
	teamRepo repositories.TeamRepository,
	leagueRepo repositories.LeagueRepository,
	coachRepo repositories.CoachRepository,
	teamLeagueRepo repositories.TeamLeagueRepository,
	rosterRepo repositories.RosterRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		txManager:      txManager,
		teamRepo:       teamRepo,
		leagueRepo:     leagueRepo,
		coachRepo:      coachRepo,
		teamLeagueRepo: teamLeagueRepo,
		rosterRepo:     rosterRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	team := &models.Team{
		Name:        input.Name,
		City:        input.City,
		FoundedYear: input.FoundedYear,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameTaken
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		populateTeamLogoURL(team, s.uploader)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		team.Name = *input.Name
	}
	if input.City != nil {
		team.City = input.City
	}
	if input.FoundedYear != nil {
		team.FoundedYear = input.FoundedYear
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameTaken
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	err := s.teamRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return ErrTeamNotFound
	}
	return err
}

func (s *teamService) UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/logo%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}

	team.LogoKey = &key
	populateTeamLogoURL(team, s.uploader)
	s.logger.Info("team logo uploaded", slog.Int("team_id", id), slog.String("key", key))
	return team, nil
}

func (s *teamService) Roster(ctx context.Context, id int) ([]*models.RosterEntry, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.rosterRepo.ListCurrentByTeam(ctx, id)
}

// JoinLeague переводит команду в новую лигу: старое членство закрывается и
// открывается новое одной транзакцией. Тренер при смене лиги не переносится.
func (s *teamService) JoinLeague(ctx context.Context, teamID, leagueID int) (*models.TeamLeague, error) {
	var membership *models.TeamLeague

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.teamRepo.GetByID(ctx, exec, teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return fmt.Errorf("%w: id %d", ErrTeamNotFound, teamID)
			}
			return err
		}
		if _, err := s.leagueRepo.GetByID(ctx, exec, leagueID); err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return fmt.Errorf("%w: id %d", ErrLeagueNotFound, leagueID)
			}
			return err
		}

		if err := s.teamLeagueRepo.CloseCurrent(ctx, exec, teamID); err != nil {
			return err
		}

		membership = &models.TeamLeague{
			TeamID:    teamID,
			LeagueID:  leagueID,
			IsCurrent: true,
			JoinedAt:  time.Now(),
		}
		if err := s.teamLeagueRepo.Create(ctx, exec, membership); err != nil {
			if errors.Is(err, repositories.ErrTeamLeagueCurrentConflict) {
				return ErrTeamAlreadyInLeague
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team joined league", slog.Int("team_id", teamID), slog.Int("league_id", leagueID))
	return membership, nil
}

// AssignCoach назначает тренера на текущее членство команды. coachID == nil
// снимает тренера.
func (s *teamService) AssignCoach(ctx context.Context, teamID int, coachID *int) (*models.TeamLeague, error) {
	var membership *models.TeamLeague

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		membership, err = s.teamLeagueRepo.GetCurrentByTeam(ctx, exec, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamLeagueNotFound) {
				return fmt.Errorf("%w: team %d", ErrTeamWithoutLeague, teamID)
			}
			return err
		}

		if coachID != nil {
			if _, err := s.coachRepo.GetByID(ctx, exec, *coachID); err != nil {
				if errors.Is(err, repositories.ErrCoachNotFound) {
					return fmt.Errorf("%w: id %d", ErrCoachNotFound, *coachID)
				}
				return err
			}
		}

		if err := s.teamLeagueRepo.AssignCoach(ctx, exec, membership.ID, coachID); err != nil {
			if errors.Is(err, repositories.ErrCoachAlreadyAssigned) {
				return ErrCoachTaken
			}
			return err
		}
		membership.CoachID = coachID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}
