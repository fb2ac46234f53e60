package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leaguehq/league-system/live"
	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

// MatchEventBroadcaster — уведомление подписчиков комнаты матча; live.Hub
// реализует интерфейс. Допускается nil (рассылка отключена).
type MatchEventBroadcaster interface {
	BroadcastMatchEvent(event live.Event)
}

type CreateMatchInput struct {
	Team1ID      int                 `json:"team1_id"`
	Team2ID      int                 `json:"team2_id"`
	LeagueID     *int                `json:"league_id"`
	TournamentID *int                `json:"tournament_id"`
	VenueID      *int                `json:"venue_id"`
	RefereeID    *int                `json:"referee_id"`
	MatchDate    time.Time           `json:"match_date"`
	MatchTime    string              `json:"match_time"`
	Status       *models.MatchStatus `json:"status"`
}

// UpdateMatchInput — частичное обновление: nil-поля не меняются.
type UpdateMatchInput struct {
	Team1ID    *int                `json:"team1_id"`
	Team2ID    *int                `json:"team2_id"`
	VenueID    *int                `json:"venue_id"`
	RefereeID  *int                `json:"referee_id"`
	MatchDate  *time.Time          `json:"match_date"`
	MatchTime  *string             `json:"match_time"`
	Status     *models.MatchStatus `json:"status"`
	Team1Score *int                `json:"team1_score"`
	Team2Score *int                `json:"team2_score"`
}

// MatchService владеет жизненным циклом матча: scheduled → live → completed,
// либо cancelled. Завершение с обоими счётами синхронно запускает
// согласование статистики в той же транзакции.
type MatchService interface {
	Schedule(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	Update(ctx context.Context, matchID int, input UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, matchID int) error
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error)
}

type matchService struct {
	txManager   repositories.TxManager
	matchRepo   repositories.MatchRepository
	eligibility EligibilityService
	stats       StatsReconciler
	standings   StandingsService
	broadcaster MatchEventBroadcaster
	logger      *slog.Logger
}

func NewMatchService(
	txManager repositories.TxManager,
	matchRepo repositories.MatchRepository,
	eligibility EligibilityService,
	stats StatsReconciler,
	standings StandingsService,
	broadcaster MatchEventBroadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txManager:   txManager,
		matchRepo:   matchRepo,
		eligibility: eligibility,
		stats:       stats,
		standings:   standings,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *matchService) Schedule(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	status := models.MatchScheduled
	if input.Status != nil {
		status = *input.Status
	}
	if status != models.MatchScheduled && status != models.MatchLive {
		return nil, ErrMatchInitialStatusInvalid
	}

	match := &models.Match{
		Team1ID:      input.Team1ID,
		Team2ID:      input.Team2ID,
		LeagueID:     input.LeagueID,
		TournamentID: input.TournamentID,
		VenueID:      input.VenueID,
		RefereeID:    input.RefereeID,
		MatchDate:    input.MatchDate,
		MatchTime:    input.MatchTime,
		Status:       status,
	}

	// Проверка и вставка в одной транзакции: чтения eligibility и запись
	// видят один снимок, а гонку двух параллельных запросов добивают
	// уникальные индексы на слотах.
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.eligibility.CheckMatch(ctx, exec, s.candidateFromMatch(match, nil)); err != nil {
			return err
		}
		return mapSlotConflict(s.matchRepo.Create(ctx, exec, match))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match scheduled",
		slog.Int("match_id", match.ID),
		slog.Int("team1_id", match.Team1ID),
		slog.Int("team2_id", match.Team2ID),
		slog.String("date", match.MatchDate.Format("2006-01-02")),
	)
	s.broadcast(live.EventMatchScheduled, match)
	return match, nil
}

func (s *matchService) Update(ctx context.Context, matchID int, input UpdateMatchInput) (*models.Match, error) {
	var updated *models.Match
	var completed bool

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		prevStatus := match.Status
		schedulingChanged := applyMatchPatch(match, input)

		if input.Status != nil && !isValidMatchTransition(prevStatus, *input.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrMatchStatusTransition, prevStatus, *input.Status)
		}
		if schedulingChanged {
			if prevStatus == models.MatchCompleted || prevStatus == models.MatchCancelled {
				return ErrMatchSchedulingLocked
			}
			// Отмена освобождает слот, перепроверять занятость не нужно.
			if match.Status != models.MatchCancelled {
				if err := s.eligibility.CheckMatch(ctx, exec, s.candidateFromMatch(match, &matchID)); err != nil {
					return err
				}
			}
		}

		if match.Status == models.MatchCompleted {
			if match.Team1Score == nil || match.Team2Score == nil {
				return ErrMatchScoresRequired
			}
			match.WinnerTeamID = deriveWinner(match)
		}

		if err := mapSlotConflict(s.matchRepo.Update(ctx, exec, match)); err != nil {
			return err
		}

		// Переход в completed (или правка счёта завершённого матча)
		// синхронно согласует производную статистику.
		if match.Status == models.MatchCompleted {
			completed = true
			if err := s.stats.ReconcileCompletedMatch(ctx, exec, match); err != nil {
				return err
			}
			if match.LeagueID != nil {
				if err := s.standings.RecomputeLeague(ctx, exec, *match.LeagueID); err != nil {
					return err
				}
			}
		}

		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := live.EventMatchUpdated
	if completed {
		eventType = live.EventMatchCompleted
	}
	s.logger.Info("match updated", slog.Int("match_id", matchID), slog.String("status", string(updated.Status)))
	s.broadcast(eventType, updated)
	return updated, nil
}

func (s *matchService) Delete(ctx context.Context, matchID int) error {
	// Удаление безусловно и освобождает слоты; строки статистики матча
	// остаются осиротевшими намеренно.
	err := s.matchRepo.Delete(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	s.logger.Info("match deleted", slog.Int("match_id", matchID))
	return nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) candidateFromMatch(m *models.Match, excludeMatchID *int) MatchCandidate {
	return MatchCandidate{
		Team1ID:        m.Team1ID,
		Team2ID:        m.Team2ID,
		LeagueID:       m.LeagueID,
		TournamentID:   m.TournamentID,
		VenueID:        m.VenueID,
		RefereeID:      m.RefereeID,
		MatchDate:      m.MatchDate,
		MatchTime:      m.MatchTime,
		ExcludeMatchID: excludeMatchID,
	}
}

// mapSlotConflict переводит нарушение уникального индекса или триггера слота
// (проигранная гонка планирования) в конфликт уровня сервиса.
func mapSlotConflict(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchVenueSlotTaken):
		return fmt.Errorf("%w: venue slot", ErrVenueSlotConflict)
	case errors.Is(err, repositories.ErrMatchRefereeSlotTaken):
		return fmt.Errorf("%w: referee slot", ErrRefereeSlotConflict)
	case errors.Is(err, repositories.ErrMatchTeamDateTaken):
		return fmt.Errorf("%w: team date slot", ErrTeamDateConflict)
	case errors.Is(err, repositories.ErrMatchCompetitionNotXOR):
		return ErrMatchCompetitionXOR
	default:
		return err
	}
}

func (s *matchService) broadcast(eventType string, match *models.Match) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastMatchEvent(live.Event{
		Type:    eventType,
		MatchID: match.ID,
		Payload: match,
	})
}

// applyMatchPatch применяет частичное обновление и сообщает, изменились ли
// поля, влияющие на расписание (они требуют повторной проверки eligibility).
func applyMatchPatch(match *models.Match, input UpdateMatchInput) (schedulingChanged bool) {
	setInt := func(dst *int, src *int) {
		if src != nil && *dst != *src {
			*dst = *src
			schedulingChanged = true
		}
	}
	setInt(&match.Team1ID, input.Team1ID)
	setInt(&match.Team2ID, input.Team2ID)

	if input.VenueID != nil && !intPtrEqual(match.VenueID, input.VenueID) {
		match.VenueID = input.VenueID
		schedulingChanged = true
	}
	if input.RefereeID != nil && !intPtrEqual(match.RefereeID, input.RefereeID) {
		match.RefereeID = input.RefereeID
		schedulingChanged = true
	}
	if input.MatchDate != nil && !match.MatchDate.Equal(*input.MatchDate) {
		match.MatchDate = *input.MatchDate
		schedulingChanged = true
	}
	if input.MatchTime != nil && match.MatchTime != *input.MatchTime {
		match.MatchTime = *input.MatchTime
		schedulingChanged = true
	}

	if input.Status != nil {
		match.Status = *input.Status
	}
	if input.Team1Score != nil {
		match.Team1Score = input.Team1Score
	}
	if input.Team2Score != nil {
		match.Team2Score = input.Team2Score
	}
	return schedulingChanged
}

func isValidMatchTransition(current, next models.MatchStatus) bool {
	if current == next {
		// Повторное завершение допустимо: согласование статистики идемпотентно.
		return current != models.MatchCancelled
	}
	allowed := map[models.MatchStatus][]models.MatchStatus{
		models.MatchScheduled: {models.MatchLive, models.MatchCompleted, models.MatchCancelled},
		models.MatchLive:      {models.MatchCompleted, models.MatchCancelled},
		models.MatchCompleted: {},
		models.MatchCancelled: {},
	}
	for _, status := range allowed[current] {
		if status == next {
			return true
		}
	}
	return false
}

func deriveWinner(m *models.Match) *int {
	if m.Team1Score == nil || m.Team2Score == nil {
		return nil
	}
	switch {
	case *m.Team1Score > *m.Team2Score:
		return &m.Team1ID
	case *m.Team2Score > *m.Team1Score:
		return &m.Team2ID
	default:
		return nil // ничья
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
