package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

// BoardEventType names a committed board change
type BoardEventType string

// BoardEventType constants
const (
	EventBoardGenerated BoardEventType = "board_generated"
	EventTaskMoved      BoardEventType = "task_moved"
	EventTaskUpdated    BoardEventType = "task_updated"
	EventTaskDeleted    BoardEventType = "task_deleted"
	EventTaskAdded      BoardEventType = "task_added"
	EventBoardReset     BoardEventType = "board_reset"
)

// BoardEvent is published after every committed change to a session's board
type BoardEvent struct {
	Type       BoardEventType `json:"type"`
	SessionID  uuid.UUID      `json:"sessionId"`
	TaskID     *uuid.UUID     `json:"taskId,omitempty"`
	Board      *domain.Board  `json:"board,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// BoardEventPublisher fans board events out to subscribers
type BoardEventPublisher interface {
	Publish(event BoardEvent)
}

// NoOpPublisher drops every event
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(BoardEvent) {}
