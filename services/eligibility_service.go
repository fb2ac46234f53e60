package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

// MinRosterSize — минимальное число текущих игроков в составе, чтобы команда
// могла выйти на матч.
const MinRosterSize = 11

// MatchCandidate — кандидат на планирование. ExcludeMatchID заполняется при
// редактировании существующего матча, чтобы он не конфликтовал сам с собой.
type MatchCandidate struct {
	Team1ID        int
	Team2ID        int
	LeagueID       *int
	TournamentID   *int
	VenueID        *int
	RefereeID      *int
	MatchDate      time.Time
	MatchTime      string
	ExcludeMatchID *int
}

// EligibilityService проверяет все предусловия планирования матча.
// Только чтение: запускается на SQLExecutor вызывающего, чтобы проверки и
// последующая запись видели один снимок данных.
type EligibilityService interface {
	CheckMatch(ctx context.Context, exec repositories.SQLExecutor, candidate MatchCandidate) error
}

type eligibilityService struct {
	teamRepo       repositories.TeamRepository
	teamLeagueRepo repositories.TeamLeagueRepository
	rosterRepo     repositories.RosterRepository
	leagueRepo     repositories.LeagueRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	venueRepo      repositories.VenueRepository
}

func NewEligibilityService(
	teamRepo repositories.TeamRepository,
	teamLeagueRepo repositories.TeamLeagueRepository,
	rosterRepo repositories.RosterRepository,
	leagueRepo repositories.LeagueRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	venueRepo repositories.VenueRepository,
) EligibilityService {
	return &eligibilityService{
		teamRepo:       teamRepo,
		teamLeagueRepo: teamLeagueRepo,
		rosterRepo:     rosterRepo,
		leagueRepo:     leagueRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		venueRepo:      venueRepo,
	}
}

func (s *eligibilityService) CheckMatch(ctx context.Context, exec repositories.SQLExecutor, c MatchCandidate) error {
	// Структурные проверки — без обращения к хранилищу.
	if c.Team1ID == 0 || c.Team2ID == 0 {
		return ErrMatchTeamsRequired
	}
	if c.Team1ID == c.Team2ID {
		return ErrMatchTeamsIdentical
	}
	if (c.LeagueID == nil) == (c.TournamentID == nil) {
		return ErrMatchCompetitionXOR
	}
	if c.MatchDate.IsZero() {
		return ErrMatchDateRequired
	}

	team1, err := s.getTeam(ctx, exec, c.Team1ID)
	if err != nil {
		return err
	}
	team2, err := s.getTeam(ctx, exec, c.Team2ID)
	if err != nil {
		return err
	}

	for _, team := range []*models.Team{team1, team2} {
		if err := s.checkCoachAndLeague(ctx, exec, team, c.LeagueID); err != nil {
			return err
		}
		if err := s.checkRosterSize(ctx, exec, team); err != nil {
			return err
		}
	}

	if err := s.checkCompetitionStarted(ctx, exec, c); err != nil {
		return err
	}

	return s.checkSlots(ctx, exec, c, team1, team2)
}

func (s *eligibilityService) getTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, exec, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrTeamNotFound, teamID)
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	return team, nil
}

// checkCoachAndLeague проверяет наличие тренера в текущем членстве команды и,
// для лигового матча, принадлежность команды этой лиге.
func (s *eligibilityService) checkCoachAndLeague(ctx context.Context, exec repositories.SQLExecutor, team *models.Team, leagueID *int) error {
	membership, err := s.teamLeagueRepo.GetCurrentByTeam(ctx, exec, team.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamLeagueNotFound) {
			return fmt.Errorf("%w: team %q", ErrTeamWithoutCoach, team.Name)
		}
		return fmt.Errorf("failed to load league membership for team %q: %w", team.Name, err)
	}
	if leagueID != nil && membership.LeagueID != *leagueID {
		return fmt.Errorf("%w: team %q", ErrTeamNotInLeague, team.Name)
	}
	if membership.CoachID == nil {
		return fmt.Errorf("%w: team %q", ErrTeamWithoutCoach, team.Name)
	}
	return nil
}

func (s *eligibilityService) checkRosterSize(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	count, err := s.rosterRepo.CountCurrentByTeam(ctx, exec, team.ID)
	if err != nil {
		return fmt.Errorf("failed to count roster for team %q: %w", team.Name, err)
	}
	if count < MinRosterSize {
		return fmt.Errorf("%w: team %q has %d of %d required players", ErrRosterTooSmall, team.Name, count, MinRosterSize)
	}
	return nil
}

func (s *eligibilityService) checkCompetitionStarted(ctx context.Context, exec repositories.SQLExecutor, c MatchCandidate) error {
	today := startOfDay(time.Now())

	if c.LeagueID != nil {
		league, err := s.leagueRepo.GetByID(ctx, exec, *c.LeagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return fmt.Errorf("%w: id %d", ErrLeagueNotFound, *c.LeagueID)
			}
			return fmt.Errorf("failed to load league %d: %w", *c.LeagueID, err)
		}
		if league.StartDate.After(today) {
			return fmt.Errorf("%w: league %q starts on %s", ErrLeagueNotStarted,
				league.Name, league.StartDate.Format("2006-01-02"))
		}
		return nil
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, exec, *c.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return fmt.Errorf("%w: id %d", ErrTournamentNotFound, *c.TournamentID)
		}
		return fmt.Errorf("failed to load tournament %d: %w", *c.TournamentID, err)
	}
	if tournament.Status == models.TournamentUpcoming || tournament.StartDate.After(today) {
		return fmt.Errorf("%w: tournament %q (status %s) starts on %s", ErrTournamentNotStarted,
			tournament.Name, tournament.Status, tournament.StartDate.Format("2006-01-02"))
	}
	return nil
}

// checkSlots — проверки двойного бронирования. Это быстрый путь для понятной
// ошибки; авторитетная защита от гонок — частичные уникальные индексы в БД.
func (s *eligibilityService) checkSlots(ctx context.Context, exec repositories.SQLExecutor, c MatchCandidate, team1, team2 *models.Team) error {
	dateStr := c.MatchDate.Format("2006-01-02")

	if c.VenueID != nil && c.MatchTime != "" {
		taken, err := s.matchRepo.VenueSlotTaken(ctx, exec, *c.VenueID, c.MatchDate, c.MatchTime, c.ExcludeMatchID)
		if err != nil {
			return fmt.Errorf("failed to check venue slot: %w", err)
		}
		if taken {
			venueName := fmt.Sprintf("id %d", *c.VenueID)
			if venue, vErr := s.venueRepo.GetByID(ctx, exec, *c.VenueID); vErr == nil {
				venueName = fmt.Sprintf("%q", venue.Name)
			}
			return fmt.Errorf("%w: venue %s on %s at %s", ErrVenueSlotConflict, venueName, dateStr, c.MatchTime)
		}
	}

	if c.RefereeID != nil && c.MatchTime != "" {
		taken, err := s.matchRepo.RefereeSlotTaken(ctx, exec, *c.RefereeID, c.MatchDate, c.MatchTime, c.ExcludeMatchID)
		if err != nil {
			return fmt.Errorf("failed to check referee slot: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: referee %d on %s at %s", ErrRefereeSlotConflict, *c.RefereeID, dateStr, c.MatchTime)
		}
	}

	for _, team := range []*models.Team{team1, team2} {
		busy, err := s.matchRepo.TeamBusyOnDate(ctx, exec, team.ID, c.MatchDate, c.ExcludeMatchID)
		if err != nil {
			return fmt.Errorf("failed to check schedule for team %q: %w", team.Name, err)
		}
		if busy {
			return fmt.Errorf("%w: team %q on %s", ErrTeamDateConflict, team.Name, dateStr)
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
