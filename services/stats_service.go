package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type TeamScoreInput struct {
	TeamID     int  `json:"team_id"`
	Score      int  `json:"score"`
	Possession *int `json:"possession"`
}

type PlayerStatInput struct {
	PlayerID int `json:"player_id"`
	Goals    int `json:"goals"`
	Assists  int `json:"assists"`
}

type MatchResultInput struct {
	Scores      []TeamScoreInput  `json:"scores"`
	PlayerStats []PlayerStatInput `json:"player_stats"`
}

// StatsReconciler — часть StatsService, нужная MatchService: приведение
// производной статистики в соответствие завершённому матчу внутри чужой
// транзакции.
type StatsReconciler interface {
	ReconcileCompletedMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
}

// StatsService фиксирует результаты матчей и отдаёт статистику. Протокол и
// сверка сумм голов выполняются в одной транзакции с завершением матча.
type StatsService interface {
	StatsReconciler
	RecordMatchResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error)
	MatchStats(ctx context.Context, matchID int) ([]*models.MatchStats, error)
	MatchPlayerStats(ctx context.Context, matchID int) ([]*models.PlayerStats, error)
	PlayerStats(ctx context.Context, playerID int) ([]*models.PlayerStats, error)
}

type statsService struct {
	txManager       repositories.TxManager
	matchRepo       repositories.MatchRepository
	teamRepo        repositories.TeamRepository
	rosterRepo      repositories.RosterRepository
	matchStatsRepo  repositories.MatchStatsRepository
	playerStatsRepo repositories.PlayerStatsRepository
	standings       StandingsService
	logger          *slog.Logger
}

func NewStatsService(
	txManager repositories.TxManager,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	rosterRepo repositories.RosterRepository,
	matchStatsRepo repositories.MatchStatsRepository,
	playerStatsRepo repositories.PlayerStatsRepository,
	standings StandingsService,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		txManager:       txManager,
		matchRepo:       matchRepo,
		teamRepo:        teamRepo,
		rosterRepo:      rosterRepo,
		matchStatsRepo:  matchStatsRepo,
		playerStatsRepo: playerStatsRepo,
		standings:       standings,
		logger:          logger,
	}
}

// RecordMatchResult принимает протокол матча: счёт обеих команд и построчную
// статистику игроков. Матч переводится в completed, производные строки
// фиксируются, таблица лиги пересчитывается. Всё в одной транзакции.
func (s *statsService) RecordMatchResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	var updated *models.Match

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status == models.MatchCancelled {
			return ErrMatchCancelled
		}

		scoreByTeam, err := validateScores(match, input.Scores)
		if err != nil {
			return err
		}

		team1Score := scoreByTeam[match.Team1ID].Score
		team2Score := scoreByTeam[match.Team2ID].Score
		match.Team1Score = &team1Score
		match.Team2Score = &team2Score
		match.Status = models.MatchCompleted
		match.WinnerTeamID = deriveWinner(match)

		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return err
		}
		if err := s.upsertTeamScores(ctx, exec, match, scoreByTeam); err != nil {
			return err
		}
		if err := s.recordPlayerStats(ctx, exec, match, input.PlayerStats, scoreByTeam); err != nil {
			return err
		}
		if match.LeagueID != nil {
			if err := s.standings.RecomputeLeague(ctx, exec, *match.LeagueID); err != nil {
				return err
			}
		}

		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("team1_score", *updated.Team1Score),
		slog.Int("team2_score", *updated.Team2Score),
	)
	return updated, nil
}

// ReconcileCompletedMatch доводит строки match_stats до счёта завершённого
// матча. Вызывается MatchService при переходе в completed через Update,
// когда протокол игроков не передаётся.
func (s *statsService) ReconcileCompletedMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if match.Team1Score == nil || match.Team2Score == nil {
		return ErrMatchScoresRequired
	}

	existing, err := s.matchStatsRepo.ListByMatch(ctx, exec, match.ID)
	if err != nil {
		return err
	}
	possessionByTeam := make(map[int]*int, len(existing))
	for _, row := range existing {
		possessionByTeam[row.TeamID] = row.Possession
	}

	for teamID, score := range map[int]int{
		match.Team1ID: *match.Team1Score,
		match.Team2ID: *match.Team2Score,
	} {
		row := &models.MatchStats{
			MatchID:    match.ID,
			TeamID:     teamID,
			Score:      score,
			Possession: possessionByTeam[teamID],
		}
		if err := s.matchStatsRepo.Upsert(ctx, exec, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *statsService) MatchStats(ctx context.Context, matchID int) ([]*models.MatchStats, error) {
	return s.matchStatsRepo.ListByMatch(ctx, nil, matchID)
}

func (s *statsService) MatchPlayerStats(ctx context.Context, matchID int) ([]*models.PlayerStats, error) {
	return s.playerStatsRepo.ListByMatch(ctx, matchID)
}

func (s *statsService) PlayerStats(ctx context.Context, playerID int) ([]*models.PlayerStats, error) {
	return s.playerStatsRepo.ListByPlayer(ctx, playerID)
}

// validateScores требует счёт ровно для двух команд матча, без посторонних.
func validateScores(match *models.Match, scores []TeamScoreInput) (map[int]TeamScoreInput, error) {
	byTeam := make(map[int]TeamScoreInput, len(scores))
	for _, score := range scores {
		if !match.InvolvesTeam(score.TeamID) {
			return nil, fmt.Errorf("%w: team %d", ErrResultTeamNotInMatch, score.TeamID)
		}
		byTeam[score.TeamID] = score
	}
	if _, ok := byTeam[match.Team1ID]; !ok {
		return nil, ErrResultScoresIncomplete
	}
	if _, ok := byTeam[match.Team2ID]; !ok {
		return nil, ErrResultScoresIncomplete
	}
	return byTeam, nil
}

func (s *statsService) upsertTeamScores(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, scoreByTeam map[int]TeamScoreInput) error {
	for _, teamID := range []int{match.Team1ID, match.Team2ID} {
		score := scoreByTeam[teamID]
		row := &models.MatchStats{
			MatchID:    match.ID,
			TeamID:     teamID,
			Score:      score.Score,
			Possession: score.Possession,
		}
		if err := s.matchStatsRepo.Upsert(ctx, exec, row); err != nil {
			return err
		}
	}
	return nil
}

// recordPlayerStats привязывает каждую строку игрока к его текущей команде и
// сверяет сумму голов команды с зафиксированным счётом.
func (s *statsService) recordPlayerStats(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, stats []PlayerStatInput, scoreByTeam map[int]TeamScoreInput) error {
	goalsByTeam := make(map[int]int, 2)
	teamByPlayer := make(map[int]int, len(stats))

	for _, stat := range stats {
		entry, err := s.rosterRepo.GetCurrentByPlayer(ctx, exec, stat.PlayerID)
		if err != nil {
			if errors.Is(err, repositories.ErrRosterEntryNotFound) {
				return fmt.Errorf("%w: player %d", ErrPlayerWithoutTeam, stat.PlayerID)
			}
			return err
		}
		if !match.InvolvesTeam(entry.TeamID) {
			return fmt.Errorf("%w: player %d plays for team %d", ErrResultTeamNotInMatch, stat.PlayerID, entry.TeamID)
		}
		teamByPlayer[stat.PlayerID] = entry.TeamID
		goalsByTeam[entry.TeamID] += stat.Goals
	}

	for teamID, goals := range goalsByTeam {
		recorded := scoreByTeam[teamID].Score
		if goals > recorded {
			teamName := fmt.Sprintf("%d", teamID)
			if team, tErr := s.teamRepo.GetByID(ctx, exec, teamID); tErr == nil {
				teamName = fmt.Sprintf("%q", team.Name)
			}
			return fmt.Errorf("%w: team %s: submitted player goals %d exceed recorded score %d",
				ErrGoalsExceedScore, teamName, goals, recorded)
		}
	}

	for _, stat := range stats {
		teamID := teamByPlayer[stat.PlayerID]
		row := &models.PlayerStats{
			PlayerID: stat.PlayerID,
			MatchID:  match.ID,
			LeagueID: match.LeagueID,
			Goals:    stat.Goals,
			Assists:  stat.Assists,
			Won:      match.WinnerTeamID != nil && *match.WinnerTeamID == teamID,
		}
		if err := s.playerStatsRepo.Upsert(ctx, exec, row); err != nil {
			return err
		}
	}
	return nil
}
