package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/dto"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
)

// BoardEventMessage is the websocket payload for one board event
type BoardEventMessage struct {
	Type       service.BoardEventType `json:"type"`
	SessionID  uuid.UUID              `json:"sessionId"`
	TaskID     *uuid.UUID             `json:"taskId,omitempty"`
	Board      *dto.BoardResponse     `json:"board,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID uuid.UUID
}

// BoardHub fans board events out to the websocket clients watching a session
type BoardHub struct {
	clients   map[uuid.UUID]map[*wsClient]struct{}
	clientsMu sync.RWMutex
	logger    *zap.Logger
}

// NewBoardHub creates an empty hub
func NewBoardHub(logger *zap.Logger) *BoardHub {
	return &BoardHub{
		clients: make(map[uuid.UUID]map[*wsClient]struct{}),
		logger:  logger,
	}
}

// Publish implements service.BoardEventPublisher. Clients whose buffer is full are dropped.
func (h *BoardHub) Publish(event service.BoardEvent) {
	msg := BoardEventMessage{
		Type:       event.Type,
		SessionID:  event.SessionID,
		TaskID:     event.TaskID,
		OccurredAt: event.OccurredAt,
	}
	if event.Board != nil {
		msg.Board = dto.NewBoardResponse(*event.Board, dto.BoardViewStored)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal board event", zap.Error(err))
		return
	}

	var slow []*wsClient
	h.clientsMu.RLock()
	for client := range h.clients[event.SessionID] {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.clientsMu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("session_id", client.sessionID.String()))
		h.unregister(client)
	}
}

// ClientCount returns the number of clients watching a session
func (h *BoardHub) ClientCount(sessionID uuid.UUID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *BoardHub) register(client *wsClient) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*wsClient]struct{})
	}
	h.clients[client.sessionID][client] = struct{}{}
}

func (h *BoardHub) unregister(client *wsClient) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
}

type WSHandler struct {
	sessionService service.SessionService
	hub            *BoardHub
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewWSHandler creates the board event stream handler. An empty origin list or
// "*" accepts any origin.
func NewWSHandler(sessionService service.SessionService, hub *BoardHub, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		hub:            hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWebSocket godoc
// @Summary      Stream board events for a session
// @Description  Every committed board change is pushed as a BoardEventMessage
// @Tags         websocket
// @Param        sessionId path string true "Session ID (UUID)"
// @Success      101 {string} string "Switching Protocols"
// @Failure      404 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}
	if _, err := h.sessionService.GetSession(c.Request.Context(), sessionID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := &wsClient{
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		sessionID: sessionID,
	}
	h.hub.register(client)
	h.logger.Info("Board watcher connected", zap.String("session_id", sessionID.String()))

	go h.writePump(client)
	go h.readPump(client)
}

// readPump only handles control frames; clients never send board changes over the socket
func (h *WSHandler) readPump(client *wsClient) {
	defer func() {
		h.hub.unregister(client)
		client.conn.Close()
		h.logger.Info("Board watcher disconnected", zap.String("session_id", client.sessionID.String()))
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (h *WSHandler) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
