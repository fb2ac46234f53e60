package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/leaguehq/league-system/live"
	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
)

// Фейки репозиториев с настраиваемыми функциями. Ненастроенные чтения ведут
// себя как пустое хранилище, ненастроенные записи молча проходят.

// stubExecutor нужен только как маркер: тесты проверяют, что сервис передаёт
// репозиториям тот же executor, который получил сам.
type stubExecutor struct{}

func (stubExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (stubExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (stubExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

type fakeTxManager struct {
	mu         sync.Mutex
	calls      int
	lastFailed bool
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	err := fn(nil)
	m.mu.Lock()
	m.lastFailed = err != nil
	m.mu.Unlock()
	return err
}

type fakeTeamRepo struct {
	GetByIDFunc func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error)
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error { return nil }
func (f *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrTeamNotFound
}
func (f *fakeTeamRepo) List(ctx context.Context) ([]*models.Team, error)       { return nil, nil }
func (f *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error    { return nil }
func (f *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	return nil
}
func (f *fakeTeamRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeTeamLeagueRepo struct {
	CreateFunc              func(ctx context.Context, exec repositories.SQLExecutor, membership *models.TeamLeague) error
	GetCurrentByTeamFunc    func(ctx context.Context, exec repositories.SQLExecutor, teamID int) (*models.TeamLeague, error)
	ListCurrentByLeagueFunc func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error)
	CloseCurrentFunc        func(ctx context.Context, exec repositories.SQLExecutor, teamID int) error
}

func (f *fakeTeamLeagueRepo) Create(ctx context.Context, exec repositories.SQLExecutor, membership *models.TeamLeague) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, membership)
	}
	return nil
}
func (f *fakeTeamLeagueRepo) GetCurrentByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) (*models.TeamLeague, error) {
	if f.GetCurrentByTeamFunc != nil {
		return f.GetCurrentByTeamFunc(ctx, exec, teamID)
	}
	return nil, repositories.ErrTeamLeagueNotFound
}
func (f *fakeTeamLeagueRepo) ListCurrentByLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.TeamLeague, error) {
	if f.ListCurrentByLeagueFunc != nil {
		return f.ListCurrentByLeagueFunc(ctx, exec, leagueID)
	}
	return nil, nil
}
func (f *fakeTeamLeagueRepo) AssignCoach(ctx context.Context, exec repositories.SQLExecutor, membershipID int, coachID *int) error {
	return nil
}
func (f *fakeTeamLeagueRepo) CloseCurrent(ctx context.Context, exec repositories.SQLExecutor, teamID int) error {
	if f.CloseCurrentFunc != nil {
		return f.CloseCurrentFunc(ctx, exec, teamID)
	}
	return nil
}

type fakeRosterRepo struct {
	CreateFunc             func(ctx context.Context, exec repositories.SQLExecutor, entry *models.RosterEntry) error
	GetCurrentByPlayerFunc func(ctx context.Context, exec repositories.SQLExecutor, playerID int) (*models.RosterEntry, error)
	CountCurrentByTeamFunc func(ctx context.Context, exec repositories.SQLExecutor, teamID int) (int, error)
	CloseFunc              func(ctx context.Context, exec repositories.SQLExecutor, entryID int, endDate time.Time) error
	DeleteFunc             func(ctx context.Context, exec repositories.SQLExecutor, entryID int) error
}

func (f *fakeRosterRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.RosterEntry) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, entry)
	}
	return nil
}
func (f *fakeRosterRepo) GetCurrentByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int) (*models.RosterEntry, error) {
	if f.GetCurrentByPlayerFunc != nil {
		return f.GetCurrentByPlayerFunc(ctx, exec, playerID)
	}
	return nil, repositories.ErrRosterEntryNotFound
}
func (f *fakeRosterRepo) ListCurrentByTeam(ctx context.Context, teamID int) ([]*models.RosterEntry, error) {
	return nil, nil
}
func (f *fakeRosterRepo) CountCurrentByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) (int, error) {
	if f.CountCurrentByTeamFunc != nil {
		return f.CountCurrentByTeamFunc(ctx, exec, teamID)
	}
	return 0, nil
}
func (f *fakeRosterRepo) Close(ctx context.Context, exec repositories.SQLExecutor, entryID int, endDate time.Time) error {
	if f.CloseFunc != nil {
		return f.CloseFunc(ctx, exec, entryID, endDate)
	}
	return nil
}
func (f *fakeRosterRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, entryID int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, exec, entryID)
	}
	return nil
}

type fakeLeagueRepo struct {
	GetByIDFunc func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.League, error)
	ListFunc    func(ctx context.Context) ([]*models.League, error)
}

func (f *fakeLeagueRepo) Create(ctx context.Context, league *models.League) error { return nil }
func (f *fakeLeagueRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.League, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrLeagueNotFound
}
func (f *fakeLeagueRepo) List(ctx context.Context) ([]*models.League, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return nil, nil
}
func (f *fakeLeagueRepo) Update(ctx context.Context, league *models.League) error { return nil }
func (f *fakeLeagueRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	return nil
}
func (f *fakeLeagueRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeTournamentRepo struct {
	GetByIDFunc      func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error)
	ListFunc         func(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatusFunc func(ctx context.Context, id int, status models.TournamentStatus) error
}

func (f *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	return nil
}
func (f *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrTournamentNotFound
}
func (f *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return nil, nil
}
func (f *fakeTournamentRepo) Update(ctx context.Context, tournament *models.Tournament) error {
	return nil
}
func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}
func (f *fakeTournamentRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeVenueRepo struct {
	GetByIDFunc func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Venue, error)
}

func (f *fakeVenueRepo) Create(ctx context.Context, venue *models.Venue) error { return nil }
func (f *fakeVenueRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Venue, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrVenueNotFound
}
func (f *fakeVenueRepo) List(ctx context.Context) ([]*models.Venue, error)    { return nil, nil }
func (f *fakeVenueRepo) Update(ctx context.Context, venue *models.Venue) error { return nil }
func (f *fakeVenueRepo) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	return nil
}
func (f *fakeVenueRepo) Delete(ctx context.Context, id int) error { return nil }

type fakePlayerRepo struct {
	GetByIDFunc func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error)
}

func (f *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error { return nil }
func (f *fakePlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrPlayerNotFound
}
func (f *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error)    { return nil, nil }
func (f *fakePlayerRepo) Update(ctx context.Context, player *models.Player) error { return nil }
func (f *fakePlayerRepo) Delete(ctx context.Context, id int) error              { return nil }

type fakeTransferRepo struct {
	CreateFunc func(ctx context.Context, exec repositories.SQLExecutor, transfer *models.Transfer) error
	created    []*models.Transfer
}

func (f *fakeTransferRepo) Create(ctx context.Context, exec repositories.SQLExecutor, transfer *models.Transfer) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, transfer)
	}
	f.created = append(f.created, transfer)
	return nil
}
func (f *fakeTransferRepo) ListByPlayer(ctx context.Context, playerID int) ([]*models.Transfer, error) {
	return f.created, nil
}

type fakeMatchRepo struct {
	CreateFunc                func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	GetByIDFunc               func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error)
	UpdateFunc                func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	DeleteFunc                func(ctx context.Context, id int) error
	ListCompletedByLeagueFunc func(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.Match, error)
	VenueSlotTakenFunc        func(ctx context.Context, exec repositories.SQLExecutor, venueID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error)
	RefereeSlotTakenFunc      func(ctx context.Context, exec repositories.SQLExecutor, refereeID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error)
	TeamBusyOnDateFunc        func(ctx context.Context, exec repositories.SQLExecutor, teamID int, date time.Time, excludeMatchID *int) (bool, error)
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, match)
	}
	return nil
}
func (f *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrMatchNotFound
}
func (f *fakeMatchRepo) List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	return nil, nil
}
func (f *fakeMatchRepo) ListCompletedByLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.Match, error) {
	if f.ListCompletedByLeagueFunc != nil {
		return f.ListCompletedByLeagueFunc(ctx, exec, leagueID)
	}
	return nil, nil
}
func (f *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, exec, match)
	}
	return nil
}
func (f *fakeMatchRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}
func (f *fakeMatchRepo) VenueSlotTaken(ctx context.Context, exec repositories.SQLExecutor, venueID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error) {
	if f.VenueSlotTakenFunc != nil {
		return f.VenueSlotTakenFunc(ctx, exec, venueID, date, matchTime, excludeMatchID)
	}
	return false, nil
}
func (f *fakeMatchRepo) RefereeSlotTaken(ctx context.Context, exec repositories.SQLExecutor, refereeID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error) {
	if f.RefereeSlotTakenFunc != nil {
		return f.RefereeSlotTakenFunc(ctx, exec, refereeID, date, matchTime, excludeMatchID)
	}
	return false, nil
}
func (f *fakeMatchRepo) TeamBusyOnDate(ctx context.Context, exec repositories.SQLExecutor, teamID int, date time.Time, excludeMatchID *int) (bool, error) {
	if f.TeamBusyOnDateFunc != nil {
		return f.TeamBusyOnDateFunc(ctx, exec, teamID, date, excludeMatchID)
	}
	return false, nil
}

type fakeMatchStatsRepo struct {
	upserted        []*models.MatchStats
	ListByMatchFunc func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.MatchStats, error)
}

func (f *fakeMatchStatsRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, stats *models.MatchStats) error {
	f.upserted = append(f.upserted, stats)
	return nil
}
func (f *fakeMatchStatsRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.MatchStats, error) {
	if f.ListByMatchFunc != nil {
		return f.ListByMatchFunc(ctx, exec, matchID)
	}
	return nil, nil
}

type fakePlayerStatsRepo struct {
	upserted []*models.PlayerStats
}

func (f *fakePlayerStatsRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, stats *models.PlayerStats) error {
	f.upserted = append(f.upserted, stats)
	return nil
}
func (f *fakePlayerStatsRepo) ListByMatch(ctx context.Context, matchID int) ([]*models.PlayerStats, error) {
	return f.upserted, nil
}
func (f *fakePlayerStatsRepo) ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStats, error) {
	return f.upserted, nil
}

type fakeTeamStatsRepo struct {
	mu       sync.Mutex
	upserted []*models.TeamStats
	deleted  []int
}

func (f *fakeTeamStatsRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, stats *models.TeamStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, stats)
	return nil
}
func (f *fakeTeamStatsRepo) ListByLeague(ctx context.Context, leagueID int) ([]*models.TeamStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserted, nil
}
func (f *fakeTeamStatsRepo) DeleteByLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, leagueID)
	f.upserted = nil
	return nil
}

// Фейки сервисных зависимостей MatchService.

type fakeEligibility struct {
	CheckMatchFunc func(ctx context.Context, exec repositories.SQLExecutor, candidate MatchCandidate) error
	calls          []MatchCandidate
}

func (f *fakeEligibility) CheckMatch(ctx context.Context, exec repositories.SQLExecutor, candidate MatchCandidate) error {
	f.calls = append(f.calls, candidate)
	if f.CheckMatchFunc != nil {
		return f.CheckMatchFunc(ctx, exec, candidate)
	}
	return nil
}

type fakeReconciler struct {
	ReconcileFunc func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	reconciled    []*models.Match
}

func (f *fakeReconciler) ReconcileCompletedMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	f.reconciled = append(f.reconciled, match)
	if f.ReconcileFunc != nil {
		return f.ReconcileFunc(ctx, exec, match)
	}
	return nil
}

type fakeStandings struct {
	recomputed []int
}

func (f *fakeStandings) RecomputeLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) error {
	f.recomputed = append(f.recomputed, leagueID)
	return nil
}
func (f *fakeStandings) RecomputeAll(ctx context.Context) error { return nil }
func (f *fakeStandings) LeagueTable(ctx context.Context, leagueID int) ([]*models.TeamStats, error) {
	return nil, nil
}

type fakeBroadcaster struct {
	events []live.Event
}

func (f *fakeBroadcaster) BroadcastMatchEvent(event live.Event) {
	f.events = append(f.events, event)
}
