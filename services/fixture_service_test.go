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

type fixtureGenFixture struct {
	txManager  *fakeTxManager
	leagueRepo *fakeLeagueRepo
	tlRepo     *fakeTeamLeagueRepo
	matchRepo  *fakeMatchRepo
	service    FixtureService

	inserted []*models.Match
}

func newFixtureGenFixture(teamIDs ...int) *fixtureGenFixture {
	f := &fixtureGenFixture{
		txManager: &fakeTxManager{},
		leagueRepo: &fakeLeagueRepo{
			GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.League, error) {
				if id == 1 {
					return &models.League{
						ID: 1, Name: "Premier",
						StartDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
					}, nil
				}
				return nil, repositories.ErrLeagueNotFound
			},
		},
		tlRepo: &fakeTeamLeagueRepo{
			ListCurrentByLeagueFunc: func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
				return memberships(teamIDs...), nil
			},
		},
	}
	f.matchRepo = &fakeMatchRepo{
		CreateFunc: func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
			f.inserted = append(f.inserted, match)
			return nil
		},
	}
	f.service = NewFixtureService(f.txManager, f.leagueRepo, f.tlRepo, f.matchRepo, discardLogger())
	return f
}

func TestGenerateLeagueFixtures(t *testing.T) {
	f := newFixtureGenFixture(1, 2, 3, 4)

	created, err := f.service.GenerateLeagueFixtures(context.Background(), 1, GenerateFixturesInput{})
	require.NoError(t, err)
	require.Len(t, created, 6)
	assert.Equal(t, 1, f.txManager.calls)

	start := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	datesSeen := make(map[time.Time]int)
	for _, match := range created {
		assert.Equal(t, models.MatchScheduled, match.Status)
		require.NotNil(t, match.LeagueID)
		assert.Equal(t, 1, *match.LeagueID)
		assert.Equal(t, "18:00", match.MatchTime)
		datesSeen[match.MatchDate]++
	}

	// Три тура с шагом в неделю от старта лиги, по две игры в каждом.
	require.Len(t, datesSeen, 3)
	for round := 0; round < 3; round++ {
		assert.Equal(t, 2, datesSeen[start.AddDate(0, 0, 7*round)])
	}
}

func TestGenerateLeagueFixturesDoubleRound(t *testing.T) {
	f := newFixtureGenFixture(1, 2, 3)

	venueID := 9
	created, err := f.service.GenerateLeagueFixtures(context.Background(), 1, GenerateFixturesInput{
		DoubleRound: true,
		MatchTime:   "20:30",
		VenueID:     &venueID,
	})
	require.NoError(t, err)
	require.Len(t, created, 6)

	for _, match := range created {
		assert.Equal(t, "20:30", match.MatchTime)
		require.NotNil(t, match.VenueID)
		assert.Equal(t, 9, *match.VenueID)
	}
}

// Игры одного тура на общей арене не должны делить слот (venue, date, time).
func TestGenerateLeagueFixturesStaggersSharedVenueTimes(t *testing.T) {
	f := newFixtureGenFixture(1, 2, 3, 4)

	venueID := 5
	created, err := f.service.GenerateLeagueFixtures(context.Background(), 1, GenerateFixturesInput{
		MatchTime: "18:00",
		VenueID:   &venueID,
	})
	require.NoError(t, err)
	require.Len(t, created, 6)

	type slot struct {
		date time.Time
		at   string
	}
	seen := make(map[slot]int)
	times := make(map[string]int)
	for _, match := range created {
		seen[slot{match.MatchDate, match.MatchTime}]++
		times[match.MatchTime]++
	}
	for s, n := range seen {
		assert.Equal(t, 1, n, "venue slot %s %s reused", s.date.Format("2006-01-02"), s.at)
	}

	// Две игры в туре: первая в базовое время, вторая через два часа.
	assert.Equal(t, 3, times["18:00"])
	assert.Equal(t, 3, times["20:00"])
}

func TestGenerateLeagueFixturesRejectsBadMatchTime(t *testing.T) {
	f := newFixtureGenFixture(1, 2)

	_, err := f.service.GenerateLeagueFixtures(context.Background(), 1, GenerateFixturesInput{MatchTime: "6pm"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFixtureTimeInvalid)
	assert.Zero(t, f.txManager.calls)
}

func TestGenerateLeagueFixturesNotEnoughTeams(t *testing.T) {
	f := newFixtureGenFixture(1)

	_, err := f.service.GenerateLeagueFixtures(context.Background(), 1, GenerateFixturesInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFixtureNotEnoughTeams)
	assert.Contains(t, err.Error(), `"Premier"`)
	assert.Empty(t, f.inserted)
}

func TestGenerateLeagueFixturesUnknownLeague(t *testing.T) {
	f := newFixtureGenFixture(1, 2)

	_, err := f.service.GenerateLeagueFixtures(context.Background(), 99, GenerateFixturesInput{})
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

// Вставка календаря атомарна: отказ на любом матче откатывает всё.
func TestGenerateLeagueFixturesRollsBackOnInsertFailure(t *testing.T) {
	f := newFixtureGenFixture(1, 2, 3, 4)
	f.matchRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
		if len(f.inserted) == 3 {
			return repositories.ErrMatchVenueSlotTaken
		}
		f.inserted = append(f.inserted, match)
		return nil
	}

	_, err := f.service.GenerateLeagueFixtures(context.Background(), 1, GenerateFixturesInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVenueSlotConflict)
	assert.True(t, f.txManager.lastFailed, "transaction should have been rolled back")
}
