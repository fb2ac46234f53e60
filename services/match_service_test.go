package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguehq/league-system/live"
	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type matchFixture struct {
	txManager   *fakeTxManager
	matchRepo   *fakeMatchRepo
	eligibility *fakeEligibility
	reconciler  *fakeReconciler
	standings   *fakeStandings
	broadcaster *fakeBroadcaster
	service     MatchService
}

func newMatchFixture() *matchFixture {
	f := &matchFixture{
		txManager:   &fakeTxManager{},
		matchRepo:   &fakeMatchRepo{},
		eligibility: &fakeEligibility{},
		reconciler:  &fakeReconciler{},
		standings:   &fakeStandings{},
		broadcaster: &fakeBroadcaster{},
	}
	f.service = NewMatchService(
		f.txManager, f.matchRepo, f.eligibility, f.reconciler, f.standings,
		f.broadcaster, discardLogger(),
	)
	return f
}

func storedMatch(status models.MatchStatus) *models.Match {
	leagueID := 1
	return &models.Match{
		ID:        10,
		Team1ID:   1,
		Team2ID:   2,
		LeagueID:  &leagueID,
		MatchDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		MatchTime: "18:00",
		Status:    status,
	}
}

func validCreateInput() CreateMatchInput {
	leagueID := 1
	return CreateMatchInput{
		Team1ID:   1,
		Team2ID:   2,
		LeagueID:  &leagueID,
		MatchDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		MatchTime: "18:00",
	}
}

func TestScheduleRunsEligibilityInTransaction(t *testing.T) {
	f := newMatchFixture()

	match, err := f.service.Schedule(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, models.MatchScheduled, match.Status)
	assert.Equal(t, 1, f.txManager.calls)
	require.Len(t, f.eligibility.calls, 1)
	assert.Equal(t, 1, f.eligibility.calls[0].Team1ID)
	assert.Nil(t, f.eligibility.calls[0].ExcludeMatchID)

	require.Len(t, f.broadcaster.events, 1)
	assert.Equal(t, live.EventMatchScheduled, f.broadcaster.events[0].Type)
}

func TestScheduleRejectsTerminalInitialStatus(t *testing.T) {
	for _, status := range []models.MatchStatus{models.MatchCompleted, models.MatchCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newMatchFixture()
			input := validCreateInput()
			input.Status = &status

			_, err := f.service.Schedule(context.Background(), input)
			assert.ErrorIs(t, err, ErrMatchInitialStatusInvalid)
			assert.Zero(t, f.txManager.calls)
		})
	}
}

func TestScheduleFailsWhenEligibilityFails(t *testing.T) {
	f := newMatchFixture()
	f.eligibility.CheckMatchFunc = func(ctx context.Context, exec repositories.SQLExecutor, candidate MatchCandidate) error {
		return ErrRosterTooSmall
	}

	var created bool
	f.matchRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
		created = true
		return nil
	}

	_, err := f.service.Schedule(context.Background(), validCreateInput())
	assert.ErrorIs(t, err, ErrRosterTooSmall)
	assert.False(t, created, "create must not run after a failed eligibility check")
	assert.Empty(t, f.broadcaster.events)
}

// Проигранная гонка планирования: проверки eligibility прошли по старому
// снимку, но вставку отбил индекс или триггер. Ошибка должна стать конфликтом.
func TestScheduleMapsSlotIndexViolation(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "venue slot", repoErr: repositories.ErrMatchVenueSlotTaken, wantErr: ErrVenueSlotConflict},
		{name: "referee slot", repoErr: repositories.ErrMatchRefereeSlotTaken, wantErr: ErrRefereeSlotConflict},
		{name: "team date slot", repoErr: repositories.ErrMatchTeamDateTaken, wantErr: ErrTeamDateConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMatchFixture()
			f.matchRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
				return tt.repoErr
			}

			_, err := f.service.Schedule(context.Background(), validCreateInput())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, f.txManager.lastFailed)
			assert.Empty(t, f.broadcaster.events)
		})
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.MatchStatus
		to      models.MatchStatus
		scores  bool
		wantErr error
	}{
		{name: "scheduled to live", from: models.MatchScheduled, to: models.MatchLive},
		{name: "scheduled to completed", from: models.MatchScheduled, to: models.MatchCompleted, scores: true},
		{name: "live to completed", from: models.MatchLive, to: models.MatchCompleted, scores: true},
		{name: "scheduled to cancelled", from: models.MatchScheduled, to: models.MatchCancelled},
		{name: "live back to scheduled", from: models.MatchLive, to: models.MatchScheduled, wantErr: ErrMatchStatusTransition},
		{name: "completed to live", from: models.MatchCompleted, to: models.MatchLive, wantErr: ErrMatchStatusTransition},
		{name: "cancelled to live", from: models.MatchCancelled, to: models.MatchLive, wantErr: ErrMatchStatusTransition},
		{name: "cancelled stays closed", from: models.MatchCancelled, to: models.MatchCancelled, wantErr: ErrMatchStatusTransition},
		{name: "completed without scores", from: models.MatchLive, to: models.MatchCompleted, wantErr: ErrMatchScoresRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMatchFixture()
			f.matchRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
				return storedMatch(tt.from), nil
			}

			input := UpdateMatchInput{Status: &tt.to}
			if tt.scores {
				s1, s2 := 2, 1
				input.Team1Score = &s1
				input.Team2Score = &s2
			}

			_, err := f.service.Update(context.Background(), 10, input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateRescheduleReachecksEligibilityExcludingSelf(t *testing.T) {
	f := newMatchFixture()
	f.matchRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
		return storedMatch(models.MatchScheduled), nil
	}

	newDate := time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC)
	_, err := f.service.Update(context.Background(), 10, UpdateMatchInput{MatchDate: &newDate})
	require.NoError(t, err)

	require.Len(t, f.eligibility.calls, 1)
	require.NotNil(t, f.eligibility.calls[0].ExcludeMatchID)
	assert.Equal(t, 10, *f.eligibility.calls[0].ExcludeMatchID)
}

func TestUpdateRescheduleLockedForTerminalMatches(t *testing.T) {
	for _, status := range []models.MatchStatus{models.MatchCompleted, models.MatchCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newMatchFixture()
			f.matchRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
				return storedMatch(status), nil
			}

			newDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
			_, err := f.service.Update(context.Background(), 10, UpdateMatchInput{MatchDate: &newDate})
			assert.ErrorIs(t, err, ErrMatchSchedulingLocked)
		})
	}
}

func TestUpdateUnchangedFieldsSkipEligibility(t *testing.T) {
	f := newMatchFixture()
	f.matchRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
		return storedMatch(models.MatchScheduled), nil
	}

	// Те же значения, что уже сохранены: пересмотр расписания не нужен.
	sameTime := "18:00"
	_, err := f.service.Update(context.Background(), 10, UpdateMatchInput{MatchTime: &sameTime})
	require.NoError(t, err)
	assert.Empty(t, f.eligibility.calls)
}

func TestUpdateCompletionReconcilesStatsAndStandings(t *testing.T) {
	f := newMatchFixture()
	f.matchRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
		return storedMatch(models.MatchLive), nil
	}

	completed := models.MatchCompleted
	s1, s2 := 3, 1
	match, err := f.service.Update(context.Background(), 10, UpdateMatchInput{
		Status:     &completed,
		Team1Score: &s1,
		Team2Score: &s2,
	})
	require.NoError(t, err)

	require.NotNil(t, match.WinnerTeamID)
	assert.Equal(t, 1, *match.WinnerTeamID)

	require.Len(t, f.reconciler.reconciled, 1)
	assert.Equal(t, []int{1}, f.standings.recomputed)

	require.Len(t, f.broadcaster.events, 1)
	assert.Equal(t, live.EventMatchCompleted, f.broadcaster.events[0].Type)
}

func TestUpdateDrawHasNoWinner(t *testing.T) {
	f := newMatchFixture()
	f.matchRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
		return storedMatch(models.MatchLive), nil
	}

	completed := models.MatchCompleted
	s := 2
	match, err := f.service.Update(context.Background(), 10, UpdateMatchInput{
		Status:     &completed,
		Team1Score: &s,
		Team2Score: &s,
	})
	require.NoError(t, err)
	assert.Nil(t, match.WinnerTeamID)
}

func TestDeleteMissingMatch(t *testing.T) {
	f := newMatchFixture()
	f.matchRepo.DeleteFunc = func(ctx context.Context, id int) error {
		return repositories.ErrMatchNotFound
	}

	err := f.service.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
