package handlers

import (
	"net/http"

	"github.com/leaguehq/league-system/services"
)

type RefereeHandler struct {
	refereeService services.RefereeService
}

func NewRefereeHandler(refereeService services.RefereeService) *RefereeHandler {
	return &RefereeHandler{refereeService: refereeService}
}

func (h *RefereeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.RefereeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	refereeID, err := getIDFromURL(r, "refereeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.GetByID(r.Context(), refereeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) List(w http.ResponseWriter, r *http.Request) {
	referees, err := h.refereeService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referees": referees}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) Update(w http.ResponseWriter, r *http.Request) {
	refereeID, err := getIDFromURL(r, "refereeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RefereeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.Update(r.Context(), refereeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	refereeID, err := getIDFromURL(r, "refereeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.refereeService.Delete(r.Context(), refereeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "referee deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
