package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/leaguehq/league-system/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTeamInvalid       = errors.New("match references an unknown team")
	ErrMatchVenueInvalid      = errors.New("match references an unknown venue")
	ErrMatchRefereeInvalid    = errors.New("match references an unknown referee")
	ErrMatchVenueSlotTaken    = errors.New("venue slot is already taken")
	ErrMatchRefereeSlotTaken  = errors.New("referee slot is already taken")
	ErrMatchTeamDateTaken     = errors.New("team already plays on this date")
	ErrMatchCompetitionNotXOR = errors.New("match must reference exactly one of league or tournament")
)

// MatchFilter ограничивает листинг матчей.
type MatchFilter struct {
	LeagueID     *int
	TournamentID *int
	TeamID       *int
	Status       *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	ListCompletedByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, id int) error

	// Проверки занятости слотов; cancelled-матчи слоты не держат.
	VenueSlotTaken(ctx context.Context, exec SQLExecutor, venueID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error)
	RefereeSlotTaken(ctx context.Context, exec SQLExecutor, refereeID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error)
	TeamBusyOnDate(ctx context.Context, exec SQLExecutor, teamID int, date time.Time, excludeMatchID *int) (bool, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, team1_id, team2_id, league_id, tournament_id, venue_id, referee_id,
	match_date, match_time, status, team1_score, team2_score, winner_team_id, created_at`

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.Team1ID, &m.Team2ID, &m.LeagueID, &m.TournamentID, &m.VenueID, &m.RefereeID,
		&m.MatchDate, &m.MatchTime, &m.Status, &m.Team1Score, &m.Team2Score, &m.WinnerTeamID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(team1_id, team2_id, league_id, tournament_id, venue_id, referee_id,
			 match_date, match_time, status, team1_score, team2_score, winner_team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.Team1ID,
		match.Team2ID,
		match.LeagueID,
		match.TournamentID,
		match.VenueID,
		match.RefereeID,
		match.MatchDate,
		match.MatchTime,
		match.Status,
		match.Team1Score,
		match.Team2Score,
		match.WinnerTeamID,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE 1=1`)

	args := make([]interface{}, 0, 4)
	placeholderIndex := 1

	appendFilter := func(clause string, value interface{}) {
		queryBuilder.WriteString(" AND " + clause + " $" + strconv.Itoa(placeholderIndex))
		args = append(args, value)
		placeholderIndex++
	}

	if filter.LeagueID != nil {
		appendFilter("league_id =", *filter.LeagueID)
	}
	if filter.TournamentID != nil {
		appendFilter("tournament_id =", *filter.TournamentID)
	}
	if filter.Status != nil {
		appendFilter("status =", *filter.Status)
	}
	if filter.TeamID != nil {
		queryBuilder.WriteString(" AND (team1_id = $" + strconv.Itoa(placeholderIndex) +
			" OR team2_id = $" + strconv.Itoa(placeholderIndex) + ")")
		args = append(args, *filter.TeamID)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY match_date ASC, match_time ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListCompletedByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE league_id = $1 AND status = $2
		ORDER BY match_date ASC, match_time ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query, leagueID, models.MatchCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			team1_id = $1, team2_id = $2, league_id = $3, tournament_id = $4,
			venue_id = $5, referee_id = $6, match_date = $7, match_time = $8,
			status = $9, team1_score = $10, team2_score = $11, winner_team_id = $12
		WHERE id = $13`

	result, err := executor.ExecContext(ctx, query,
		match.Team1ID, match.Team2ID, match.LeagueID, match.TournamentID,
		match.VenueID, match.RefereeID, match.MatchDate, match.MatchTime,
		match.Status, match.Team1Score, match.Team2Score, match.WinnerTeamID,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) VenueSlotTaken(ctx context.Context, exec SQLExecutor, venueID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error) {
	return r.slotTaken(ctx, exec, "venue_id", venueID, date, matchTime, excludeMatchID)
}

func (r *postgresMatchRepository) RefereeSlotTaken(ctx context.Context, exec SQLExecutor, refereeID int, date time.Time, matchTime string, excludeMatchID *int) (bool, error) {
	return r.slotTaken(ctx, exec, "referee_id", refereeID, date, matchTime, excludeMatchID)
}

func (r *postgresMatchRepository) slotTaken(ctx context.Context, exec SQLExecutor, column string, id int, date time.Time, matchTime string, excludeMatchID *int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE ` + column + ` = $1
			  AND match_date = $2
			  AND match_time = $3
			  AND status <> $4
			  AND ($5::int IS NULL OR id <> $5)
		)`

	var exclude sql.NullInt64
	if excludeMatchID != nil {
		exclude = sql.NullInt64{Int64: int64(*excludeMatchID), Valid: true}
	}

	var taken bool
	err := executor.QueryRowContext(ctx, query, id, date, matchTime, models.MatchCancelled, exclude).Scan(&taken)
	return taken, err
}

func (r *postgresMatchRepository) TeamBusyOnDate(ctx context.Context, exec SQLExecutor, teamID int, date time.Time, excludeMatchID *int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE (team1_id = $1 OR team2_id = $1)
			  AND match_date = $2
			  AND status <> $3
			  AND ($4::int IS NULL OR id <> $4)
		)`

	var exclude sql.NullInt64
	if excludeMatchID != nil {
		exclude = sql.NullInt64{Int64: int64(*excludeMatchID), Valid: true}
	}

	var busy bool
	err := executor.QueryRowContext(ctx, query, teamID, date, models.MatchCancelled, exclude).Scan(&busy)
	return busy, err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_team_id_fkey":
				return ErrMatchTeamInvalid
			case "matches_venue_id_fkey":
				return ErrMatchVenueInvalid
			case "matches_referee_id_fkey":
				return ErrMatchRefereeInvalid
			}
		case "23505": // unique_violation: гонка двух одновременных планирований
			switch pqErr.Constraint {
			case "uq_matches_venue_slot":
				return ErrMatchVenueSlotTaken
			case "uq_matches_referee_slot":
				return ErrMatchRefereeSlotTaken
			case "uq_matches_team1_date", "uq_matches_team2_date", "uq_matches_team_date":
				return ErrMatchTeamDateTaken
			}
		case "23514": // check_violation
			if strings.Contains(pqErr.Constraint, "league_id") || strings.Contains(pqErr.Constraint, "tournament_id") {
				return ErrMatchCompetitionNotXOR
			}
		}
	}
	return err
}
