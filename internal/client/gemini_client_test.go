package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// candidateBody wraps text the way generateContent returns it
func candidateBody(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	return string(body)
}

type recordedRequest struct {
	path   string
	apiKey string
	body   geminiRequest
}

func newTestClient(t *testing.T, status int, body string) (BoardAI, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.apiKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	return NewGeminiClient(server.URL+"/", "test-key", "gemini-test", 5*time.Second, zap.NewNop(), m), rec
}

func TestGeminiClient_SuggestStories(t *testing.T) {
	t.Run("성공: stories decoded and trimmed", func(t *testing.T) {
		ai, rec := newTestClient(t, http.StatusOK, candidateBody(`{"stories":["  As a user, I want to log in so that I can see my data ", ""]}`))

		out, err := ai.SuggestStories(context.Background(), StoryRequest{ProjectName: "Shop", TeamMembers: "Ana", DurationWeeks: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{"As a user, I want to log in so that I can see my data"}, out.Stories)

		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", rec.path)
		assert.Equal(t, "test-key", rec.apiKey)
		assert.Equal(t, "application/json", rec.body.GenerationConfig.ResponseMimeType)
		require.Len(t, rec.body.Contents, 1)
		assert.Contains(t, rec.body.Contents[0].Parts[0].Text, "Project Name: Shop")
	})

	t.Run("실패: no stories", func(t *testing.T) {
		ai, _ := newTestClient(t, http.StatusOK, candidateBody(`{"stories":[]}`))
		_, err := ai.SuggestStories(context.Background(), StoryRequest{ProjectName: "Shop"})
		assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable))
	})
}

func TestGeminiClient_GenerateBoard(t *testing.T) {
	t.Run("성공: fenced JSON is accepted", func(t *testing.T) {
		text := "```json\n{\"columns\":[{\"name\":\"Auth\",\"description\":\"As a user...\",\"tasks\":[{\"name\":\"Login\",\"description\":\"form\",\"storyPoints\":3,\"assignedTo\":\"Ana\"}]}]}\n```"
		ai, rec := newTestClient(t, http.StatusOK, candidateBody(text))

		cols, err := ai.GenerateBoard(context.Background(), BoardRequest{
			ProjectName: "Shop", TeamMembers: "Ana", DurationWeeks: 2,
			Stories: []string{"As a user, I want to log in so that I can buy"},
		})
		require.NoError(t, err)
		require.Len(t, cols, 1)
		assert.Equal(t, "Auth", cols[0].Name)
		assert.Equal(t, domain.RawTask{Name: "Login", Description: "form", StoryPoints: 3, AssignedTo: "Ana"}, cols[0].Tasks[0])
		assert.Contains(t, rec.body.Contents[0].Parts[0].Text, "- As a user, I want to log in so that I can buy")
	})

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"실패: server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`},
		{"실패: rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`},
		{"실패: not JSON", http.StatusOK, `<html>`},
		{"실패: no candidates", http.StatusOK, `{"candidates":[]}`},
		{"실패: candidate is not JSON", http.StatusOK, candidateBody("Here is your board!")},
		{"실패: empty columns", http.StatusOK, candidateBody(`{"columns":[]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai, _ := newTestClient(t, tt.status, tt.body)
			cols, err := ai.GenerateBoard(context.Background(), BoardRequest{ProjectName: "Shop"})
			assert.Nil(t, cols)
			assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable), "got %v", err)
		})
	}
}

func TestGeminiClient_Unreachable(t *testing.T) {
	ai := NewGeminiClient("http://127.0.0.1:1", "k", "m", time.Second, zap.NewNop(), nil)
	_, err := ai.SuggestStories(context.Background(), StoryRequest{ProjectName: "Shop"})
	assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable))
}

func TestGeminiClient_Tip(t *testing.T) {
	colID := uuid.New()
	board := domain.Board{Columns: []domain.Column{{
		ID: colID, Name: "Auth",
		Tasks: []domain.Task{{ID: uuid.New(), ColumnID: colID, Name: "Login", StoryPoints: 5, Status: domain.TaskStatusBlocked, Dependencies: []uuid.UUID{}}},
	}}}

	t.Run("성공", func(t *testing.T) {
		ai, rec := newTestClient(t, http.StatusOK, candidateBody(`{"tip":"Unblock Login first","reasoning":"It is the only blocked task"}`))
		out, err := ai.Tip(context.Background(), TipRequest{ProjectPhase: "execution", UserInteraction: "moved Login", Board: &board})
		require.NoError(t, err)
		assert.Equal(t, "Unblock Login first", out.Tip)

		prompt := rec.body.Contents[0].Parts[0].Text
		assert.Contains(t, prompt, "Project Phase: execution")
		assert.Contains(t, prompt, `"status":"Blocked"`)
		assert.NotContains(t, prompt, colID.String(), "ids are not sent to the model")
	})

	t.Run("실패: empty tip", func(t *testing.T) {
		ai, _ := newTestClient(t, http.StatusOK, candidateBody(`{"tip":"  ","reasoning":"x"}`))
		_, err := ai.Tip(context.Background(), TipRequest{ProjectPhase: "planning"})
		assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable))
	})
}

func TestDisabledAI(t *testing.T) {
	ai := NewDisabledAI()
	ctx := context.Background()

	_, err := ai.SuggestStories(ctx, StoryRequest{})
	assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable))
	_, err = ai.GenerateBoard(ctx, BoardRequest{})
	assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable))
	_, err = ai.Tip(ctx, TipRequest{})
	assert.True(t, response.HasCode(err, response.ErrCodeServiceUnavailable))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1} "))
	assert.True(t, strings.HasPrefix(stripCodeFence("```\n[1]\n```"), "["))
}
