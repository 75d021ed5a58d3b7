package client

import (
	"context"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// StoryRequest is the project metadata sent for story suggestion
type StoryRequest struct {
	ProjectName   string `json:"projectName"`
	TeamMembers   string `json:"teamMembers"`
	DurationWeeks int    `json:"durationWeeks"`
}

// StoryResponse holds the suggested user stories
type StoryResponse struct {
	Stories []string `json:"stories"`
}

// BoardRequest is the project metadata plus confirmed stories sent for board generation
type BoardRequest struct {
	ProjectName   string   `json:"projectName"`
	TeamMembers   string   `json:"teamMembers"`
	DurationWeeks int      `json:"durationWeeks"`
	Stories       []string `json:"stories"`
}

// TipRequest describes the board and what the user just did
type TipRequest struct {
	ProjectPhase    string        `json:"projectPhase"`
	UserInteraction string        `json:"userInteraction"`
	Board           *domain.Board `json:"board,omitempty"`
}

// TipResponse is one agile best practice tip
type TipResponse struct {
	Tip       string `json:"tip"`
	Reasoning string `json:"reasoning"`
}

// BoardAI defines the interface for the generative collaborators.
// Every failure is returned as a SERVICE_UNAVAILABLE AppError.
type BoardAI interface {
	// SuggestStories proposes user stories for a new project
	SuggestStories(ctx context.Context, req StoryRequest) (StoryResponse, error)
	// GenerateBoard turns confirmed stories into id-less columns and tasks
	GenerateBoard(ctx context.Context, req BoardRequest) ([]domain.RawColumn, error)
	// Tip returns an agile tip for the current board
	Tip(ctx context.Context, req TipRequest) (TipResponse, error)
}

// DisabledAI is used when no API key is configured
type DisabledAI struct{}

// NewDisabledAI creates a BoardAI that always reports unavailability
func NewDisabledAI() BoardAI {
	return &DisabledAI{}
}

func (d *DisabledAI) SuggestStories(ctx context.Context, req StoryRequest) (StoryResponse, error) {
	return StoryResponse{}, errDisabled()
}

func (d *DisabledAI) GenerateBoard(ctx context.Context, req BoardRequest) ([]domain.RawColumn, error) {
	return nil, errDisabled()
}

func (d *DisabledAI) Tip(ctx context.Context, req TipRequest) (TipResponse, error) {
	return TipResponse{}, errDisabled()
}

func errDisabled() error {
	return response.NewServiceUnavailableError("AI features are disabled", nil)
}
