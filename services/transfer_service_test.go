package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type transferFixture struct {
	txManager    *fakeTxManager
	playerRepo   *fakePlayerRepo
	teamRepo     *fakeTeamRepo
	rosterRepo   *fakeRosterRepo
	tlRepo       *fakeTeamLeagueRepo
	transferRepo *fakeTransferRepo
	service      TransferService

	closedEntries  []int
	deletedEntries []int
	createdEntries []*models.RosterEntry
}

// newTransferFixture: игрок 1 в команде 1 (лига 5), команда 2 в лиге 6.
func newTransferFixture() *transferFixture {
	f := &transferFixture{
		txManager:    &fakeTxManager{},
		transferRepo: &fakeTransferRepo{},
	}

	f.playerRepo = &fakePlayerRepo{
		GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
			if id == 1 {
				return &models.Player{ID: 1, FirstName: "Ivan", LastName: "Petrov"}, nil
			}
			return nil, repositories.ErrPlayerNotFound
		},
	}
	f.teamRepo = &fakeTeamRepo{
		GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
			switch id {
			case 1:
				return &models.Team{ID: 1, Name: "Dynamo"}, nil
			case 2:
				return &models.Team{ID: 2, Name: "Spartak"}, nil
			}
			return nil, repositories.ErrTeamNotFound
		},
	}
	f.rosterRepo = &fakeRosterRepo{
		GetCurrentByPlayerFunc: func(ctx context.Context, exec repositories.SQLExecutor, playerID int) (*models.RosterEntry, error) {
			if playerID == 1 {
				return &models.RosterEntry{ID: 100, PlayerID: 1, TeamID: 1, IsCurrent: true}, nil
			}
			return nil, repositories.ErrRosterEntryNotFound
		},
		CloseFunc: func(ctx context.Context, exec repositories.SQLExecutor, entryID int, endDate time.Time) error {
			f.closedEntries = append(f.closedEntries, entryID)
			return nil
		},
		DeleteFunc: func(ctx context.Context, exec repositories.SQLExecutor, entryID int) error {
			f.deletedEntries = append(f.deletedEntries, entryID)
			return nil
		},
		CreateFunc: func(ctx context.Context, exec repositories.SQLExecutor, entry *models.RosterEntry) error {
			f.createdEntries = append(f.createdEntries, entry)
			return nil
		},
	}
	f.tlRepo = &fakeTeamLeagueRepo{
		GetCurrentByTeamFunc: func(ctx context.Context, exec repositories.SQLExecutor, teamID int) (*models.TeamLeague, error) {
			switch teamID {
			case 1:
				return &models.TeamLeague{ID: 1, TeamID: 1, LeagueID: 5, IsCurrent: true}, nil
			case 2:
				return &models.TeamLeague{ID: 2, TeamID: 2, LeagueID: 6, IsCurrent: true}, nil
			}
			return nil, repositories.ErrTeamLeagueNotFound
		},
	}

	f.service = NewTransferService(
		f.txManager, f.playerRepo, f.teamRepo, f.rosterRepo, f.tlRepo, f.transferRepo,
		discardLogger(),
	)
	return f
}

func validTransferInput() TransferInput {
	return TransferInput{
		PlayerID:     1,
		ToTeamID:     2,
		TransferDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Type:         models.TransferPermanent,
	}
}

func TestTransferPermanentRemovesOldEntry(t *testing.T) {
	f := newTransferFixture()

	transfer, err := f.service.Transfer(context.Background(), validTransferInput())
	require.NoError(t, err)

	assert.Equal(t, []int{100}, f.deletedEntries)
	assert.Empty(t, f.closedEntries)

	require.NotNil(t, transfer.FromTeamID)
	assert.Equal(t, 1, *transfer.FromTeamID)
	assert.Equal(t, 2, transfer.ToTeamID)
	assert.Equal(t, 6, transfer.LeagueID)
	require.NotNil(t, transfer.FromLeagueID)
	assert.Equal(t, 5, *transfer.FromLeagueID)

	require.Len(t, f.createdEntries, 1)
	entry := f.createdEntries[0]
	assert.Equal(t, 1, entry.PlayerID)
	assert.Equal(t, 2, entry.TeamID)
	assert.True(t, entry.IsCurrent)
}

func TestTransferLoanClosesOldEntry(t *testing.T) {
	f := newTransferFixture()
	input := validTransferInput()
	input.Type = models.TransferLoan

	_, err := f.service.Transfer(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []int{100}, f.closedEntries)
	assert.Empty(t, f.deletedEntries)
	require.Len(t, f.createdEntries, 1)
}

func TestTransferFirstContract(t *testing.T) {
	f := newTransferFixture()
	f.rosterRepo.GetCurrentByPlayerFunc = func(ctx context.Context, exec repositories.SQLExecutor, playerID int) (*models.RosterEntry, error) {
		return nil, repositories.ErrRosterEntryNotFound
	}

	transfer, err := f.service.Transfer(context.Background(), validTransferInput())
	require.NoError(t, err)

	assert.Nil(t, transfer.FromTeamID)
	assert.Nil(t, transfer.FromLeagueID)
	assert.Empty(t, f.closedEntries)
	assert.Empty(t, f.deletedEntries)
	require.Len(t, f.createdEntries, 1)
}

func TestTransferValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(input *TransferInput)
		wantErr error
	}{
		{
			name:    "missing destination",
			mutate:  func(input *TransferInput) { input.ToTeamID = 0 },
			wantErr: ErrTransferFieldsMissing,
		},
		{
			name:    "missing date",
			mutate:  func(input *TransferInput) { input.TransferDate = time.Time{} },
			wantErr: ErrTransferFieldsMissing,
		},
		{
			name:    "bad type",
			mutate:  func(input *TransferInput) { input.Type = "trial" },
			wantErr: ErrTransferTypeInvalid,
		},
		{
			name:    "same team",
			mutate:  func(input *TransferInput) { input.ToTeamID = 1 },
			wantErr: ErrSameTeamTransfer,
		},
		{
			name:    "unknown player",
			mutate:  func(input *TransferInput) { input.PlayerID = 99 },
			wantErr: ErrPlayerNotFound,
		},
		{
			name:    "unknown team",
			mutate:  func(input *TransferInput) { input.ToTeamID = 99 },
			wantErr: ErrTeamNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture()
			input := validTransferInput()
			tt.mutate(&input)

			_, err := f.service.Transfer(context.Background(), input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.transferRepo.created)
		})
	}
}

func TestTransferDestinationWithoutLeague(t *testing.T) {
	f := newTransferFixture()
	f.tlRepo.GetCurrentByTeamFunc = func(ctx context.Context, exec repositories.SQLExecutor, teamID int) (*models.TeamLeague, error) {
		if teamID == 1 {
			return &models.TeamLeague{ID: 1, TeamID: 1, LeagueID: 5, IsCurrent: true}, nil
		}
		return nil, repositories.ErrTeamLeagueNotFound
	}

	_, err := f.service.Transfer(context.Background(), validTransferInput())
	assert.ErrorIs(t, err, ErrTeamWithoutLeague)
}

// Вся последовательность перехода выполняется внутри одной транзакции: отказ
// на последнем шаге должен откатить весь переход.
func TestTransferRollsBackWhenFinalInsertFails(t *testing.T) {
	f := newTransferFixture()
	f.rosterRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, entry *models.RosterEntry) error {
		return errors.New("insert failed")
	}

	_, err := f.service.Transfer(context.Background(), validTransferInput())
	require.Error(t, err)

	assert.Equal(t, 1, f.txManager.calls)
	assert.True(t, f.txManager.lastFailed, "transaction should have been rolled back")
}

func TestTransferConcurrentLoserGetsConflict(t *testing.T) {
	f := newTransferFixture()
	f.rosterRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, entry *models.RosterEntry) error {
		return repositories.ErrRosterCurrentConflict
	}

	_, err := f.service.Transfer(context.Background(), validTransferInput())
	assert.ErrorIs(t, err, ErrTransferConflict)
	assert.NotErrorIs(t, err, ErrSameTeamTransfer)
	assert.True(t, f.txManager.lastFailed)
}
