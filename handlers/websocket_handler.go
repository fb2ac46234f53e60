package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/leaguehq/league-system/live"
	"github.com/leaguehq/league-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить список Origin перед выкаткой наружу.
		return true
	},
}

type WebSocketHandler struct {
	hub          *live.Hub
	matchService services.MatchService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, matchService services.MatchService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		matchService: matchService,
		logger:       logger,
	}
}

// ServeMatch подписывает клиента на события матча: GET /ws/matches/{matchID}.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.matchService.GetByID(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		h.logger.Error("websocket upgrade failed", slog.Int("match_id", matchID), slog.Any("error", err))
		return
	}

	h.hub.Subscribe(conn, matchID)
}
