package handlers

import (
	"net/http"
	"strconv"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
	"github.com/leaguehq/league-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
	statsService services.StatsService
}

func NewMatchHandler(matchService services.MatchService, statsService services.StatsService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		statsService: statsService,
	}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Schedule(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List поддерживает фильтры ?league_id=, ?tournament_id=, ?team_id=, ?status=.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "match deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult принимает протокол матча и завершает его.
func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.statsService.RecordMatchResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teamStats, err := h.statsService.MatchStats(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	playerStats, err := h.statsService.MatchPlayerStats(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team_stats":   teamStats,
		"player_stats": playerStats,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func matchFilterFromQuery(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter

	parseOptionalID := func(name string) (*int, error) {
		value := r.URL.Query().Get(name)
		if value == "" {
			return nil, nil
		}
		id, err := strconv.Atoi(value)
		if err != nil || id < 1 {
			return nil, errInvalidQueryParam(name)
		}
		return &id, nil
	}

	var err error
	if filter.LeagueID, err = parseOptionalID("league_id"); err != nil {
		return filter, err
	}
	if filter.TournamentID, err = parseOptionalID("tournament_id"); err != nil {
		return filter, err
	}
	if filter.TeamID, err = parseOptionalID("team_id"); err != nil {
		return filter, err
	}

	if value := r.URL.Query().Get("status"); value != "" {
		status := models.MatchStatus(value)
		switch status {
		case models.MatchScheduled, models.MatchLive, models.MatchCompleted, models.MatchCancelled:
			filter.Status = &status
		default:
			return filter, errInvalidQueryParam("status")
		}
	}
	return filter, nil
}
