// Package live рассылает события жизненного цикла матча подписчикам по
// WebSocket. Одна комната на матч.
package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Типы событий, рассылаемых в комнату матча.
const (
	EventMatchScheduled = "MATCH_SCHEDULED"
	EventMatchUpdated   = "MATCH_UPDATED"
	EventMatchCompleted = "MATCH_COMPLETED"
)

type Event struct {
	Type    string      `json:"type"`
	MatchID int         `json:"match_id"`
	Payload interface{} `json:"payload"`
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string

	mu     sync.Mutex
	closed bool
}

type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Debug("ws client registered", slog.String("room", client.room))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("ws client unregistered", slog.String("room", client.room))
		}
	}
}

// BroadcastMatchEvent отправляет событие всем подписчикам комнаты матча.
// Отставшие клиенты пропускаются, рассылка не блокируется.
func (h *Hub) BroadcastMatchEvent(event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal ws event", slog.Any("error", err))
		return
	}

	room := matchRoom(event.MatchID)
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- messageBytes:
		default:
		}
		client.mu.Unlock()
	}
}

// Subscribe привязывает установленное WebSocket-соединение к комнате матча
// и запускает его насосы чтения/записи.
func (h *Hub) Subscribe(conn *websocket.Conn, matchID int) {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
		room: matchRoom(matchID),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func matchRoom(matchID int) string {
	return "match:" + strconv.Itoa(matchID)
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Входящие сообщения игнорируются: канал только на чтение для клиента.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("ws read error", slog.String("room", c.room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
