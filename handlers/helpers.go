package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leaguehq/league-system/services"
)

type jsonResponse map[string]interface{}

func errInvalidQueryParam(name string) error {
	return fmt.Errorf("invalid %s query parameter", name)
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			// Ошибка программиста: в decode передан не указатель.
			panic(err)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
// Конфликты планирования и уникальности отдаются как 409, нарушения
// предусловий и структуры запроса как 400, остальное как 404/401/500.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено.
	case errors.Is(err, services.ErrLeagueNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrCoachNotFound),
		errors.Is(err, services.ErrRefereeNotFound),
		errors.Is(err, services.ErrVenueNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrUserNotFound):
		notFoundResponse(w, r)

	// Конфликты расписания и уникальности.
	case errors.Is(err, services.ErrVenueSlotConflict),
		errors.Is(err, services.ErrRefereeSlotConflict),
		errors.Is(err, services.ErrTeamDateConflict),
		errors.Is(err, services.ErrSameTeamTransfer),
		errors.Is(err, services.ErrTransferConflict),
		errors.Is(err, services.ErrTeamAlreadyInLeague),
		errors.Is(err, services.ErrCoachTaken),
		errors.Is(err, services.ErrTeamNameTaken),
		errors.Is(err, services.ErrLeagueNameTaken),
		errors.Is(err, services.ErrVenueNameTaken),
		errors.Is(err, services.ErrAuthEmailTaken):
		conflictResponse(w, r, err.Error())

	// Структурные ошибки запроса и нарушения предусловий.
	case errors.Is(err, services.ErrMatchTeamsRequired),
		errors.Is(err, services.ErrMatchTeamsIdentical),
		errors.Is(err, services.ErrMatchCompetitionXOR),
		errors.Is(err, services.ErrMatchDateRequired),
		errors.Is(err, services.ErrMatchInitialStatusInvalid),
		errors.Is(err, services.ErrMatchStatusTransition),
		errors.Is(err, services.ErrMatchScoresRequired),
		errors.Is(err, services.ErrMatchSchedulingLocked),
		errors.Is(err, services.ErrMatchCancelled),
		errors.Is(err, services.ErrTransferFieldsMissing),
		errors.Is(err, services.ErrTransferTypeInvalid),
		errors.Is(err, services.ErrResultScoresIncomplete),
		errors.Is(err, services.ErrResultTeamNotInMatch),
		errors.Is(err, services.ErrFixtureNotEnoughTeams),
		errors.Is(err, services.ErrFixtureTimeInvalid),
		errors.Is(err, services.ErrTeamWithoutCoach),
		errors.Is(err, services.ErrTeamNotInLeague),
		errors.Is(err, services.ErrRosterTooSmall),
		errors.Is(err, services.ErrLeagueNotStarted),
		errors.Is(err, services.ErrTournamentNotStarted),
		errors.Is(err, services.ErrTeamWithoutLeague),
		errors.Is(err, services.ErrPlayerWithoutTeam),
		errors.Is(err, services.ErrGoalsExceedScore),
		errors.Is(err, services.ErrPasswordTooShort):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrAuthInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
