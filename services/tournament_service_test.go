package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguehq/league-system/models"
)

func TestTournamentCreateStatusByStartDate(t *testing.T) {
	repo := &fakeTournamentRepo{}
	service := NewTournamentService(repo, discardLogger())

	future, err := service.Create(context.Background(), CreateTournamentInput{
		Name:      "Spring Cup",
		StartDate: time.Now().AddDate(0, 0, 14),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TournamentUpcoming, future.Status)

	started, err := service.Create(context.Background(), CreateTournamentInput{
		Name:      "Autumn Cup",
		StartDate: time.Now().AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TournamentActive, started.Status)
}

func TestTournamentAutoUpdateStatuses(t *testing.T) {
	now := time.Now()
	pastEnd := now.AddDate(0, 0, -2)
	futureEnd := now.AddDate(0, 0, 30)

	repo := &fakeTournamentRepo{
		ListFunc: func(ctx context.Context) ([]*models.Tournament, error) {
			return []*models.Tournament{
				{ID: 1, Status: models.TournamentUpcoming, StartDate: now.AddDate(0, 0, -1)},
				{ID: 2, Status: models.TournamentUpcoming, StartDate: now.AddDate(0, 0, 5)},
				{ID: 3, Status: models.TournamentActive, StartDate: now.AddDate(0, 0, -10), EndDate: &pastEnd},
				{ID: 4, Status: models.TournamentActive, StartDate: now.AddDate(0, 0, -10), EndDate: &futureEnd},
				{ID: 5, Status: models.TournamentActive, StartDate: now.AddDate(0, 0, -10)},
				{ID: 6, Status: models.TournamentCancelled, StartDate: now.AddDate(0, 0, -10), EndDate: &pastEnd},
			}, nil
		},
	}

	updates := make(map[int]models.TournamentStatus)
	repo.UpdateStatusFunc = func(ctx context.Context, id int, status models.TournamentStatus) error {
		updates[id] = status
		return nil
	}

	service := NewTournamentService(repo, discardLogger())
	require.NoError(t, service.AutoUpdateStatusesByDates(context.Background()))

	assert.Equal(t, map[int]models.TournamentStatus{
		1: models.TournamentActive,
		3: models.TournamentCompleted,
	}, updates)
}

func TestTournamentAutoUpdateContinuesAfterRowError(t *testing.T) {
	now := time.Now()
	repo := &fakeTournamentRepo{
		ListFunc: func(ctx context.Context) ([]*models.Tournament, error) {
			return []*models.Tournament{
				{ID: 1, Status: models.TournamentUpcoming, StartDate: now.AddDate(0, 0, -1)},
				{ID: 2, Status: models.TournamentUpcoming, StartDate: now.AddDate(0, 0, -1)},
			}, nil
		},
	}

	var updated []int
	repo.UpdateStatusFunc = func(ctx context.Context, id int, status models.TournamentStatus) error {
		if id == 1 {
			return assert.AnError
		}
		updated = append(updated, id)
		return nil
	}

	service := NewTournamentService(repo, discardLogger())
	require.NoError(t, service.AutoUpdateStatusesByDates(context.Background()))
	assert.Equal(t, []int{2}, updated)
}
