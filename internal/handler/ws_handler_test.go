package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/repository"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

func setupWSServer(t *testing.T) (*httptest.Server, service.SessionService, *BoardHub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	hub := NewBoardHub(logger)
	svc := service.NewSessionService(repository.NewMemorySessionRepository(), stubAI{}, hub, true, nil, logger)
	ws := NewWSHandler(svc, hub, []string{"*"}, logger)

	router := gin.New()
	router.GET("/sessions/:sessionId/ws", ws.HandleWebSocket)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, svc, hub
}

func dialBoard(t *testing.T, server *httptest.Server, sessionID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + sessionID.String() + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) BoardEventMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg BoardEventMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWSHandler_StreamsBoardEvents(t *testing.T) {
	server, svc, hub := setupWSServer(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SuggestStories(ctx, session.ID, domain.ProjectDetails{ProjectName: "Webshop", TeamMembers: "Ana", DurationWeeks: 2})
	require.NoError(t, err)

	conn := dialBoard(t, server, session.ID)
	require.Eventually(t, func() bool { return hub.ClientCount(session.ID) == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.GenerateBoard(ctx, session.ID, []string{"As a shopper, I want to search products"})
	require.NoError(t, err)

	msg := readEvent(t, conn)
	assert.Equal(t, service.EventBoardGenerated, msg.Type)
	assert.Equal(t, session.ID, msg.SessionID)
	require.NotNil(t, msg.Board)
	require.Len(t, msg.Board.Columns, 2)

	columnID := msg.Board.Columns[1].ColumnID
	_, task, err := svc.AddTask(ctx, session.ID, columnID, service.TaskInput{Name: "Receipt email"})
	require.NoError(t, err)

	msg = readEvent(t, conn)
	assert.Equal(t, service.EventTaskAdded, msg.Type)
	require.NotNil(t, msg.TaskID)
	assert.Equal(t, task.ID, *msg.TaskID)
	assert.Len(t, msg.Board.Columns[1].Tasks, 2)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(session.ID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestWSHandler_OtherSessionsAreIsolated(t *testing.T) {
	server, svc, hub := setupWSServer(t)
	ctx := context.Background()

	watched, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	other, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	conn := dialBoard(t, server, watched.ID)
	require.Eventually(t, func() bool { return hub.ClientCount(watched.ID) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(service.BoardEvent{Type: service.EventBoardReset, SessionID: other.ID, OccurredAt: time.Now()})
	hub.Publish(service.BoardEvent{Type: service.EventBoardReset, SessionID: watched.ID, OccurredAt: time.Now()})

	msg := readEvent(t, conn)
	assert.Equal(t, watched.ID, msg.SessionID, "only the watched session's events arrive")
	assert.Nil(t, msg.Board)
}

func TestWSHandler_UnknownSession(t *testing.T) {
	server, _, _ := setupWSServer(t)

	resp, err := http.Get(server.URL + "/sessions/" + uuid.NewString() + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"성공: no restriction", nil, "https://a.example", true},
		{"성공: wildcard", []string{"*"}, "https://a.example", true},
		{"성공: listed", []string{"https://a.example"}, "https://a.example", true},
		{"성공: no origin header", []string{"https://a.example"}, "", true},
		{"실패: unlisted", []string{"https://a.example"}, "https://b.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(req))
		})
	}
}
