package handlers

import (
	"net/http"

	"github.com/leaguehq/league-system/services"
)

type PlayerHandler struct {
	playerService   services.PlayerService
	transferService services.TransferService
	statsService    services.StatsService
}

func NewPlayerHandler(
	playerService services.PlayerService,
	transferService services.TransferService,
	statsService services.StatsService,
) *PlayerHandler {
	return &PlayerHandler{
		playerService:   playerService,
		transferService: transferService,
		statsService:    statsService,
	}
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "player deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Transfer выполняет переход игрока в другую команду.
func (h *PlayerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.TransferInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.PlayerID = playerID

	transfer, err := h.transferService.Transfer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"transfer": transfer}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transfers, err := h.transferService.History(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transfers": transfers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statsService.PlayerStats(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
