package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectDetails is the metadata collected by the setup form and sent to the AI
type ProjectDetails struct {
	ProjectName   string `json:"projectName"`
	TeamMembers   string `json:"teamMembers"`
	DurationWeeks int    `json:"durationWeeks"`
}

// TeamMemberList splits the comma-separated team members, trimming blanks
func (p ProjectDetails) TeamMemberList() []string {
	members := make([]string, 0)
	for _, m := range strings.Split(p.TeamMembers, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}

// RawTask is a task as returned by the board generation service, without ids
type RawTask struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StoryPoints int    `json:"storyPoints,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

// RawColumn is a column as returned by the board generation service, without ids
type RawColumn struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tasks       []RawTask `json:"tasks"`
}

// SetupStep tracks where a session is in the setup flow
type SetupStep string

// SetupStep constants
const (
	SetupStepDetails SetupStep = "details"
	SetupStepStories SetupStep = "stories"
	SetupStepBoard   SetupStep = "board"
)

// Session holds everything one user builds during a visit: project details,
// reviewed stories and the current board snapshot
type Session struct {
	ID        uuid.UUID       `json:"id"`
	Step      SetupStep       `json:"step"`
	Project   *ProjectDetails `json:"project,omitempty"`
	Stories   []string        `json:"stories"`
	Board     *Board          `json:"board,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// HasBoard reports whether a board has been installed
func (s *Session) HasBoard() bool {
	return s.Board != nil
}

// Reset discards project details, stories and board
func (s *Session) Reset(now time.Time) {
	s.Step = SetupStepDetails
	s.Project = nil
	s.Stories = nil
	s.Board = nil
	s.UpdatedAt = now
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	out := *s
	if s.Project != nil {
		p := *s.Project
		out.Project = &p
	}
	if s.Stories != nil {
		out.Stories = append([]string(nil), s.Stories...)
	}
	if s.Board != nil {
		b := s.Board.Clone()
		out.Board = &b
	}
	return &out
}
