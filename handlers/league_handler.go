package handlers

import (
	"net/http"

	"github.com/leaguehq/league-system/services"
)

type LeagueHandler struct {
	leagueService    services.LeagueService
	standingsService services.StandingsService
	fixtureService   services.FixtureService
}

func NewLeagueHandler(
	leagueService services.LeagueService,
	standingsService services.StandingsService,
	fixtureService services.FixtureService,
) *LeagueHandler {
	return &LeagueHandler{
		leagueService:    leagueService,
		standingsService: standingsService,
		fixtureService:   fixtureService,
	}
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.GetByID(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagueService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Update(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.Update(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.leagueService.Delete(r.Context(), leagueID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "league deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	league, err := h.leagueService.UploadLogo(r.Context(), leagueID, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Members(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.leagueService.Members(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings отдаёт текущую таблицу лиги, отсортированную по очкам и разнице.
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.leagueService.GetByID(r.Context(), leagueID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	table, err := h.standingsService.LeagueTable(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateFixturesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.fixtureService.GenerateLeagueFixtures(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
