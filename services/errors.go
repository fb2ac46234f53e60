package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
// Сгруппированы по таксономии: структурные, конфликты, ошибки состояния,
// не найдено. Ошибки хранилища не имеют sentinel — они уходят как 500.
var (
	// Структурные ошибки (400): обнаруживаются локально, без повторных попыток.
	ErrMatchTeamsRequired        = errors.New("both teams are required")
	ErrMatchTeamsIdentical       = errors.New("a team cannot play against itself")
	ErrMatchCompetitionXOR       = errors.New("exactly one of league or tournament must be set")
	ErrMatchDateRequired         = errors.New("match date is required")
	ErrMatchInitialStatusInvalid = errors.New("a match can only be created as scheduled or live")
	ErrMatchStatusTransition     = errors.New("invalid match status transition")
	ErrMatchScoresRequired       = errors.New("both scores are required to complete a match")
	ErrTransferFieldsMissing     = errors.New("player, destination team and transfer date are required")
	ErrTransferTypeInvalid       = errors.New("transfer type must be permanent or loan")
	ErrResultScoresIncomplete    = errors.New("scores for both match teams are required")
	ErrResultTeamNotInMatch      = errors.New("submitted team does not play in this match")
	ErrFixtureNotEnoughTeams     = errors.New("league needs at least two member teams to generate fixtures")
	ErrFixtureTimeInvalid        = errors.New("match time must be in HH:MM format")

	// Конфликты (409): вызывающий должен выбрать другие входные данные.
	ErrVenueSlotConflict   = errors.New("venue is already booked for this date and time")
	ErrRefereeSlotConflict = errors.New("referee is already booked for this date and time")
	ErrTeamDateConflict    = errors.New("team already has a match on this date")
	ErrSameTeamTransfer    = errors.New("player is already on this team")
	ErrTransferConflict    = errors.New("player roster changed concurrently, retry the transfer")

	// Ошибки состояния (400 с описанием текущего/требуемого состояния).
	ErrTeamWithoutCoach      = errors.New("team has no coach assigned")
	ErrTeamNotInLeague       = errors.New("team is not a member of this league")
	ErrRosterTooSmall        = errors.New("team roster has fewer players than required")
	ErrLeagueNotStarted      = errors.New("league has not started yet")
	ErrTournamentNotStarted  = errors.New("tournament has not started yet")
	ErrTeamWithoutLeague     = errors.New("destination team has no current league")
	ErrPlayerWithoutTeam     = errors.New("player has no current team")
	ErrGoalsExceedScore      = errors.New("player goals exceed the team's recorded score")
	ErrMatchSchedulingLocked = errors.New("match is completed or cancelled and cannot be rescheduled")
	ErrMatchCancelled        = errors.New("cannot record a result for a cancelled match")

	// Ошибки аутентификации.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	// Не найдено (404).
	ErrLeagueNotFound     = errors.New("league not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCoachNotFound      = errors.New("coach not found")
	ErrRefereeNotFound    = errors.New("referee not found")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")
)
