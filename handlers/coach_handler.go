package handlers

import (
	"net/http"

	"github.com/leaguehq/league-system/services"
)

type CoachHandler struct {
	coachService services.CoachService
}

func NewCoachHandler(coachService services.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

func (h *CoachHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CoachInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	coach, err := h.coachService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"coach": coach}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	coach, err := h.coachService.GetByID(r.Context(), coachID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) List(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.coachService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"coaches": coaches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) Update(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CoachInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	coach, err := h.coachService.Update(r.Context(), coachID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) Delete(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.coachService.Delete(r.Context(), coachID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "coach deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
