package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

const (
	pointsWin  = 3
	pointsDraw = 1

	recomputeConcurrency = 4
)

// StandingsService держит таблицу лиги как чистую производную от завершённых
// матчей: каждый пересчёт удаляет строки и строит их заново, поэтому результат
// детерминирован и идемпотентен.
type StandingsService interface {
	RecomputeLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) error
	RecomputeAll(ctx context.Context) error
	LeagueTable(ctx context.Context, leagueID int) ([]*models.TeamStats, error)
}

type standingsService struct {
	txManager      repositories.TxManager
	leagueRepo     repositories.LeagueRepository
	teamLeagueRepo repositories.TeamLeagueRepository
	matchRepo      repositories.MatchRepository
	teamStatsRepo  repositories.TeamStatsRepository
	logger         *slog.Logger
}

func NewStandingsService(
	txManager repositories.TxManager,
	leagueRepo repositories.LeagueRepository,
	teamLeagueRepo repositories.TeamLeagueRepository,
	matchRepo repositories.MatchRepository,
	teamStatsRepo repositories.TeamStatsRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		txManager:      txManager,
		leagueRepo:     leagueRepo,
		teamLeagueRepo: teamLeagueRepo,
		matchRepo:      matchRepo,
		teamStatsRepo:  teamStatsRepo,
		logger:         logger,
	}
}

// RecomputeLeague пересобирает таблицу лиги из завершённых матчей. Команды без
// сыгранных матчей получают нулевую строку, если состоят в лиге сейчас.
func (s *standingsService) RecomputeLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) error {
	matches, err := s.matchRepo.ListCompletedByLeague(ctx, exec, leagueID)
	if err != nil {
		return fmt.Errorf("failed to load completed matches for league %d: %w", leagueID, err)
	}

	rows := make(map[int]*models.TeamStats)
	row := func(teamID int) *models.TeamStats {
		if r, ok := rows[teamID]; ok {
			return r
		}
		r := &models.TeamStats{TeamID: teamID, LeagueID: leagueID}
		rows[teamID] = r
		return r
	}

	memberships, err := s.teamLeagueRepo.ListCurrentByLeague(ctx, exec, leagueID)
	if err != nil {
		return fmt.Errorf("failed to load members of league %d: %w", leagueID, err)
	}
	for _, membership := range memberships {
		row(membership.TeamID)
	}

	for _, match := range matches {
		if match.Team1Score == nil || match.Team2Score == nil {
			continue
		}
		applyResult(row(match.Team1ID), *match.Team1Score, *match.Team2Score)
		applyResult(row(match.Team2ID), *match.Team2Score, *match.Team1Score)
	}

	if err := s.teamStatsRepo.DeleteByLeague(ctx, exec, leagueID); err != nil {
		return fmt.Errorf("failed to reset standings for league %d: %w", leagueID, err)
	}
	for _, r := range rows {
		r.GoalDifference = r.GoalsFor - r.GoalsAgainst
		if err := s.teamStatsRepo.Upsert(ctx, exec, r); err != nil {
			return fmt.Errorf("failed to write standings row (team %d, league %d): %w", r.TeamID, leagueID, err)
		}
	}
	return nil
}

// RecomputeAll пересчитывает все лиги, каждую в своей транзакции. Используется
// фоновым планировщиком как страховка от любого рассинхрона.
func (s *standingsService) RecomputeAll(ctx context.Context) error {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leagues: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeConcurrency)
	for _, league := range leagues {
		league := league
		g.Go(func() error {
			err := s.txManager.WithinTx(gctx, func(exec repositories.SQLExecutor) error {
				return s.RecomputeLeague(gctx, exec, league.ID)
			})
			if err != nil {
				s.logger.Error("standings recompute failed",
					slog.Int("league_id", league.ID), slog.Any("error", err))
			}
			return err
		})
	}
	return g.Wait()
}

func (s *standingsService) LeagueTable(ctx context.Context, leagueID int) ([]*models.TeamStats, error) {
	table, err := s.teamStatsRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for league %d: %w", leagueID, err)
	}
	return table, nil
}

func applyResult(r *models.TeamStats, scored, conceded int) {
	r.GamesPlayed++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		r.Wins++
		r.Points += pointsWin
	case scored == conceded:
		r.Draws++
		r.Points += pointsDraw
	default:
		r.Losses++
	}
}
