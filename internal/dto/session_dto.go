package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

// ProjectDetailsRequest represents the setup form
// @Description teamMembers is a comma-separated list of names
type ProjectDetailsRequest struct {
	ProjectName   string `json:"projectName" binding:"required,min=2,max=100" example:"Webshop"`
	TeamMembers   string `json:"teamMembers" binding:"required,max=500" example:"Ana, Ben, Chen"`
	DurationWeeks int    `json:"durationWeeks" binding:"required,min=1,max=104" example:"6"`
}

// ToDomain converts the request to ProjectDetails
func (r ProjectDetailsRequest) ToDomain() domain.ProjectDetails {
	return domain.ProjectDetails{
		ProjectName:   r.ProjectName,
		TeamMembers:   r.TeamMembers,
		DurationWeeks: r.DurationWeeks,
	}
}

// GenerateBoardRequest carries the reviewed user stories
type GenerateBoardRequest struct {
	Stories []string `json:"stories" binding:"required,min=1,dive,min=10,max=1000"`
}

// ProjectDetailsResponse mirrors ProjectDetails with the parsed member list
type ProjectDetailsResponse struct {
	ProjectName   string   `json:"projectName"`
	TeamMembers   string   `json:"teamMembers"`
	Members       []string `json:"members"`
	DurationWeeks int      `json:"durationWeeks"`
}

// SessionResponse represents a session without its board
type SessionResponse struct {
	SessionID uuid.UUID               `json:"sessionId"`
	Step      domain.SetupStep        `json:"step"`
	Project   *ProjectDetailsResponse `json:"project,omitempty"`
	Stories   []string                `json:"stories"`
	HasBoard  bool                    `json:"hasBoard"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// NewSessionResponse converts a session to its response form
func NewSessionResponse(session *domain.Session) *SessionResponse {
	resp := &SessionResponse{
		SessionID: session.ID,
		Step:      session.Step,
		Stories:   session.Stories,
		HasBoard:  session.HasBoard(),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if resp.Stories == nil {
		resp.Stories = []string{}
	}
	if session.Project != nil {
		resp.Project = &ProjectDetailsResponse{
			ProjectName:   session.Project.ProjectName,
			TeamMembers:   session.Project.TeamMembers,
			Members:       session.Project.TeamMemberList(),
			DurationWeeks: session.Project.DurationWeeks,
		}
	}
	return resp
}

// TipRequest carries optional context for an agile tip
type TipRequest struct {
	ProjectPhase    string `json:"projectPhase" binding:"max=100" example:"execution"`
	UserInteraction string `json:"userInteraction" binding:"max=500" example:"moved Login to Done"`
}

// TipResponse is one agile best practice tip
type TipResponse struct {
	Tip       string `json:"tip"`
	Reasoning string `json:"reasoning"`
}
