package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/client"
	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// stubAI returns a fixed two-column board
type stubAI struct{}

func (stubAI) SuggestStories(ctx context.Context, req client.StoryRequest) (client.StoryResponse, error) {
	return client.StoryResponse{Stories: []string{"As a shopper, I want to search products"}}, nil
}

func (stubAI) GenerateBoard(ctx context.Context, req client.BoardRequest) ([]domain.RawColumn, error) {
	return []domain.RawColumn{
		{Name: "Search", Tasks: []domain.RawTask{{Name: "Index products", StoryPoints: 3}}},
		{Name: "Checkout", Tasks: []domain.RawTask{{Name: "Card form", StoryPoints: 5}}},
	}, nil
}

func (stubAI) Tip(ctx context.Context, req client.TipRequest) (client.TipResponse, error) {
	return client.TipResponse{Tip: "Keep the daily stand-up short"}, nil
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{response.ErrCodeNotFound, http.StatusNotFound},
		{response.ErrCodeInvalidInput, http.StatusBadRequest},
		{response.ErrCodeConflict, http.StatusConflict},
		{response.ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{response.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "실패: app error keeps its code and message",
			err:      response.NewNotFoundError("Task not found", "abc"),
			wantCode: http.StatusNotFound,
			wantBody: `{"success":false,"error":{"code":"NOT_FOUND","message":"Task not found"}}`,
		},
		{
			name:     "실패: plain error hides details",
			err:      errors.New("redis: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			handleServiceError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestParseUUIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/sessions/:sessionId", func(c *gin.Context) {
		if _, ok := parseUUIDParam(c, "sessionId", "session ID"); ok {
			c.Status(http.StatusNoContent)
		}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid session ID")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/4f1c2a8e-52b4-4d59-9a3e-0d2c1f6b7a10", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealthHandler_WithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(nil)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
