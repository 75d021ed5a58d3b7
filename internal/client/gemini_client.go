package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// maxResponseBytes caps how much of a provider response is read
const maxResponseBytes = 4 << 20

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// geminiClient implements BoardAI over the Gemini generateContent REST API
type geminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewGeminiClient creates a new Gemini-backed BoardAI
func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) BoardAI {
	return &geminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

// SuggestStories asks the model for 5 to 8 user stories
func (c *geminiClient) SuggestStories(ctx context.Context, req StoryRequest) (StoryResponse, error) {
	prompt, err := render(storyPrompt, req)
	if err != nil {
		return StoryResponse{}, response.NewAppError(response.ErrCodeInternal, "Failed to render story prompt", err.Error())
	}

	var out StoryResponse
	if err := c.generate(ctx, "suggest_stories", prompt, &out); err != nil {
		return StoryResponse{}, err
	}

	stories := make([]string, 0, len(out.Stories))
	for _, s := range out.Stories {
		if s = strings.TrimSpace(s); s != "" {
			stories = append(stories, s)
		}
	}
	if len(stories) == 0 {
		return StoryResponse{}, response.NewServiceUnavailableError("Story suggestion returned no stories", nil)
	}
	return StoryResponse{Stories: stories}, nil
}

// GenerateBoard asks the model for epics and tasks derived from the stories
func (c *geminiClient) GenerateBoard(ctx context.Context, req BoardRequest) ([]domain.RawColumn, error) {
	prompt, err := render(boardPrompt, req)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to render board prompt", err.Error())
	}

	var out struct {
		Columns []domain.RawColumn `json:"columns"`
	}
	if err := c.generate(ctx, "generate_board", prompt, &out); err != nil {
		return nil, err
	}
	if len(out.Columns) == 0 {
		return nil, response.NewServiceUnavailableError("Board generation returned no columns", nil)
	}
	return out.Columns, nil
}

// Tip asks the model for one tip relevant to the phase, interaction and board
func (c *geminiClient) Tip(ctx context.Context, req TipRequest) (TipResponse, error) {
	prompt, err := renderTipPrompt(req)
	if err != nil {
		return TipResponse{}, response.NewAppError(response.ErrCodeInternal, "Failed to render tip prompt", err.Error())
	}

	var out TipResponse
	if err := c.generate(ctx, "agile_tip", prompt, &out); err != nil {
		return TipResponse{}, err
	}
	if strings.TrimSpace(out.Tip) == "" {
		return TipResponse{}, response.NewServiceUnavailableError("Tip service returned an empty tip", nil)
	}
	return out, nil
}

// generate sends one prompt and decodes the first candidate's JSON text into out
func (c *geminiClient) generate(ctx context.Context, operation, prompt string, out interface{}) error {
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)
	url := c.baseURL + path

	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to marshal AI request", err.Error())
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to create AI request", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(path, http.MethodPost, statusCode, duration, err)

	if err != nil {
		c.logger.Error("AI request failed",
			zap.String("operation", operation),
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return response.NewServiceUnavailableError("AI service is unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error("Failed to read AI response",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return response.NewServiceUnavailableError("AI service is unavailable", err)
	}

	var decoded geminiResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		c.logger.Warn("AI service returned non-success status",
			zap.String("operation", operation),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", msg),
			zap.Duration("duration", duration),
		)
		return response.NewServiceUnavailableError("AI service is unavailable",
			fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
	if decodeErr != nil {
		return c.malformed(operation, decodeErr)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return c.malformed(operation, fmt.Errorf("no candidates in response"))
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text.String())), out); err != nil {
		return c.malformed(operation, fmt.Errorf("decode candidate: %w", err))
	}

	c.logger.Info("AI request completed",
		zap.String("operation", operation),
		zap.Duration("duration", duration),
	)
	return nil
}

func (c *geminiClient) malformed(operation string, err error) error {
	c.logger.Warn("AI service returned an unusable response",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return response.NewServiceUnavailableError("AI service returned an unusable response", err)
}

// stripCodeFence removes a surrounding ```json fence some models add despite the JSON mime type
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
