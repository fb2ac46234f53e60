package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

type standingsFixture struct {
	txManager     *fakeTxManager
	leagueRepo    *fakeLeagueRepo
	tlRepo        *fakeTeamLeagueRepo
	matchRepo     *fakeMatchRepo
	teamStatsRepo *fakeTeamStatsRepo
	service       StandingsService
}

func newStandingsFixture() *standingsFixture {
	f := &standingsFixture{
		txManager:     &fakeTxManager{},
		leagueRepo:    &fakeLeagueRepo{},
		tlRepo:        &fakeTeamLeagueRepo{},
		matchRepo:     &fakeMatchRepo{},
		teamStatsRepo: &fakeTeamStatsRepo{},
	}
	f.service = NewStandingsService(
		f.txManager, f.leagueRepo, f.tlRepo, f.matchRepo, f.teamStatsRepo,
		discardLogger(),
	)
	return f
}

func completedMatch(team1, team2, score1, score2 int) *models.Match {
	leagueID := 1
	return &models.Match{
		Team1ID:    team1,
		Team2ID:    team2,
		LeagueID:   &leagueID,
		Team1Score: &score1,
		Team2Score: &score2,
		MatchDate:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.MatchCompleted,
	}
}

func memberships(teamIDs ...int) []*models.TeamLeague {
	out := make([]*models.TeamLeague, 0, len(teamIDs))
	for _, id := range teamIDs {
		out = append(out, &models.TeamLeague{TeamID: id, LeagueID: 1, IsCurrent: true})
	}
	return out
}

func rowsByTeam(rows []*models.TeamStats) map[int]*models.TeamStats {
	byTeam := make(map[int]*models.TeamStats, len(rows))
	for _, r := range rows {
		byTeam[r.TeamID] = r
	}
	return byTeam
}

func TestRecomputeLeagueFromCompletedMatches(t *testing.T) {
	f := newStandingsFixture()
	f.tlRepo.ListCurrentByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
		return memberships(1, 2, 3), nil
	}
	f.matchRepo.ListCompletedByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.Match, error) {
		return []*models.Match{
			completedMatch(1, 2, 3, 1), // команда 1 побеждает
			completedMatch(2, 3, 2, 2), // ничья
		}, nil
	}

	require.NoError(t, f.service.RecomputeLeague(context.Background(), nil, 1))
	require.Len(t, f.teamStatsRepo.upserted, 3)

	byTeam := rowsByTeam(f.teamStatsRepo.upserted)

	team1 := byTeam[1]
	require.NotNil(t, team1)
	assert.Equal(t, 1, team1.GamesPlayed)
	assert.Equal(t, 1, team1.Wins)
	assert.Equal(t, 3, team1.Points)
	assert.Equal(t, 2, team1.GoalDifference)

	team2 := byTeam[2]
	require.NotNil(t, team2)
	assert.Equal(t, 2, team2.GamesPlayed)
	assert.Equal(t, 1, team2.Losses)
	assert.Equal(t, 1, team2.Draws)
	assert.Equal(t, 1, team2.Points)
	assert.Equal(t, -2, team2.GoalDifference)

	team3 := byTeam[3]
	require.NotNil(t, team3)
	assert.Equal(t, 1, team3.Draws)
	assert.Equal(t, 1, team3.Points)
	assert.Equal(t, 0, team3.GoalDifference)
}

func TestRecomputeLeagueSeedsZeroRowsForIdleMembers(t *testing.T) {
	f := newStandingsFixture()
	f.tlRepo.ListCurrentByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
		return memberships(1, 2), nil
	}

	require.NoError(t, f.service.RecomputeLeague(context.Background(), nil, 1))
	require.Len(t, f.teamStatsRepo.upserted, 2)
	for _, row := range f.teamStatsRepo.upserted {
		assert.Zero(t, row.GamesPlayed)
		assert.Zero(t, row.Points)
		assert.Equal(t, 1, row.LeagueID)
	}
}

// Таблица пересобирается с нуля при каждом пересчёте, второй прогон даёт тот
// же результат и не накапливает очки.
func TestRecomputeLeagueIdempotent(t *testing.T) {
	f := newStandingsFixture()
	f.tlRepo.ListCurrentByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
		return memberships(1, 2), nil
	}
	f.matchRepo.ListCompletedByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.Match, error) {
		return []*models.Match{completedMatch(1, 2, 2, 0)}, nil
	}

	require.NoError(t, f.service.RecomputeLeague(context.Background(), nil, 1))
	require.NoError(t, f.service.RecomputeLeague(context.Background(), nil, 1))

	assert.Equal(t, []int{1, 1}, f.teamStatsRepo.deleted)
	require.Len(t, f.teamStatsRepo.upserted, 2)

	byTeam := rowsByTeam(f.teamStatsRepo.upserted)
	assert.Equal(t, 3, byTeam[1].Points)
	assert.Equal(t, 1, byTeam[1].GamesPlayed)
	assert.Equal(t, 0, byTeam[2].Points)
}

// Матч, сыгранный командой до выхода из лиги, остаётся в её таблице.
func TestRecomputeLeagueKeepsRowsOfFormerMembers(t *testing.T) {
	f := newStandingsFixture()
	f.tlRepo.ListCurrentByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
		return memberships(1), nil
	}
	f.matchRepo.ListCompletedByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.Match, error) {
		return []*models.Match{completedMatch(1, 9, 1, 1)}, nil
	}

	require.NoError(t, f.service.RecomputeLeague(context.Background(), nil, 1))

	byTeam := rowsByTeam(f.teamStatsRepo.upserted)
	require.NotNil(t, byTeam[9])
	assert.Equal(t, 1, byTeam[9].GamesPlayed)
	assert.Equal(t, 1, byTeam[9].Points)
}

// Все чтения пересчёта идут через переданный executor, а не мимо транзакции.
func TestRecomputeLeagueReadsThroughGivenExecutor(t *testing.T) {
	f := newStandingsFixture()
	exec := &stubExecutor{}

	var membersExec, matchesExec repositories.SQLExecutor
	f.tlRepo.ListCurrentByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
		membersExec = exec
		return memberships(1, 2), nil
	}
	f.matchRepo.ListCompletedByLeagueFunc = func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.Match, error) {
		matchesExec = exec
		return nil, nil
	}

	require.NoError(t, f.service.RecomputeLeague(context.Background(), exec, 1))
	assert.Same(t, exec, membersExec)
	assert.Same(t, exec, matchesExec)
}

func TestRecomputeAllCoversEveryLeague(t *testing.T) {
	f := newStandingsFixture()
	f.leagueRepo.ListFunc = func(ctx context.Context) ([]*models.League, error) {
		return []*models.League{{ID: 1}, {ID: 2}, {ID: 3}}, nil
	}

	require.NoError(t, f.service.RecomputeAll(context.Background()))
	assert.Equal(t, 3, f.txManager.calls)
	assert.ElementsMatch(t, []int{1, 2, 3}, f.teamStatsRepo.deleted)
}
