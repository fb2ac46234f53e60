package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
	"github.com/leaguehq/league-system/schedule"
)

// Туры раскладываются по неделям от даты старта лиги. Игры тура на общей
// арене разводятся по времени с этим шагом.
const (
	roundInterval       = 7 * 24 * time.Hour
	fixtureSlotInterval = 2 * time.Hour
)

type GenerateFixturesInput struct {
	DoubleRound bool   `json:"double_round"`
	MatchTime   string `json:"match_time"`
	VenueID     *int   `json:"venue_id"`
}

// FixtureService генерирует круговой календарь лиги из её текущих участников.
// Все матчи вставляются одной транзакцией: либо календарь целиком, либо ничего.
type FixtureService interface {
	GenerateLeagueFixtures(ctx context.Context, leagueID int, input GenerateFixturesInput) ([]*models.Match, error)
}

type fixtureService struct {
	txManager      repositories.TxManager
	leagueRepo     repositories.LeagueRepository
	teamLeagueRepo repositories.TeamLeagueRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
}

func NewFixtureService(
	txManager repositories.TxManager,
	leagueRepo repositories.LeagueRepository,
	teamLeagueRepo repositories.TeamLeagueRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		txManager:      txManager,
		leagueRepo:     leagueRepo,
		teamLeagueRepo: teamLeagueRepo,
		matchRepo:      matchRepo,
		logger:         logger,
	}
}

func (s *fixtureService) GenerateLeagueFixtures(ctx context.Context, leagueID int, input GenerateFixturesInput) ([]*models.Match, error) {
	matchTime := input.MatchTime
	if matchTime == "" {
		matchTime = "18:00"
	}
	baseTime, err := time.Parse("15:04", matchTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFixtureTimeInvalid, input.MatchTime)
	}

	var created []*models.Match

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		league, err := s.leagueRepo.GetByID(ctx, exec, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return fmt.Errorf("%w: id %d", ErrLeagueNotFound, leagueID)
			}
			return err
		}

		memberships, err := s.teamLeagueRepo.ListCurrentByLeague(ctx, exec, leagueID)
		if err != nil {
			return fmt.Errorf("failed to load members of league %d: %w", leagueID, err)
		}
		if len(memberships) < 2 {
			return fmt.Errorf("%w: league %q has %d", ErrFixtureNotEnoughTeams, league.Name, len(memberships))
		}

		teamIDs := make([]int, 0, len(memberships))
		for _, membership := range memberships {
			teamIDs = append(teamIDs, membership.TeamID)
		}

		fixtures := schedule.RoundRobin(teamIDs, input.DoubleRound)
		created = make([]*models.Match, 0, len(fixtures))
		slotInRound := make(map[int]int)
		for _, fixture := range fixtures {
			slotTime := matchTime
			if input.VenueID != nil {
				// Общая арена: игры одного тура не могут делить слот
				// (venue, date, time), разводим их по времени.
				offset := slotInRound[fixture.Round]
				slotInRound[fixture.Round]++
				slotTime = baseTime.Add(time.Duration(offset) * fixtureSlotInterval).Format("15:04")
			}

			match := &models.Match{
				Team1ID:   fixture.HomeTeamID,
				Team2ID:   fixture.AwayTeamID,
				LeagueID:  &leagueID,
				VenueID:   input.VenueID,
				MatchDate: league.StartDate.Add(time.Duration(fixture.Round-1) * roundInterval),
				MatchTime: slotTime,
				Status:    models.MatchScheduled,
			}
			if err := mapSlotConflict(s.matchRepo.Create(ctx, exec, match)); err != nil {
				return fmt.Errorf("failed to insert fixture round %d (%d vs %d): %w",
					fixture.Round, fixture.HomeTeamID, fixture.AwayTeamID, err)
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("league fixtures generated",
		slog.Int("league_id", leagueID),
		slog.Int("matches", len(created)),
		slog.Bool("double_round", input.DoubleRound),
	)
	return created, nil
}
