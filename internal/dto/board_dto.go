package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

// Board views
const (
	BoardViewStored = "stored"
	BoardViewSorted = "sorted"
)

// DependencyRef resolves a dependency id to a display name.
// Deleted tasks show as "Unknown Task".
type DependencyRef struct {
	TaskID uuid.UUID `json:"taskId"`
	Name   string    `json:"name"`
}

// TaskResponse represents a task with resolved dependency names
type TaskResponse struct {
	TaskID       uuid.UUID         `json:"taskId"`
	ColumnID     uuid.UUID         `json:"columnId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	StoryPoints  int               `json:"storyPoints"`
	Status       domain.TaskStatus `json:"status"`
	AssignedTo   string            `json:"assignedTo,omitempty"`
	DueDate      *time.Time        `json:"dueDate,omitempty"`
	Dependencies []DependencyRef   `json:"dependencies"`
}

// ColumnResponse represents a column and its tasks
type ColumnResponse struct {
	ColumnID    uuid.UUID      `json:"columnId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StoryPoints int            `json:"storyPoints"`
	Tasks       []TaskResponse `json:"tasks"`
}

// BoardResponse represents a board snapshot
type BoardResponse struct {
	View    string           `json:"view"`
	Columns []ColumnResponse `json:"columns"`
}

// NewTaskResponse converts a task, resolving dependency names against board
func NewTaskResponse(task domain.Task, board domain.Board) TaskResponse {
	deps := make([]DependencyRef, 0, len(task.Dependencies))
	for _, id := range task.Dependencies {
		deps = append(deps, DependencyRef{TaskID: id, Name: board.TaskName(id)})
	}
	return TaskResponse{
		TaskID:       task.ID,
		ColumnID:     task.ColumnID,
		Name:         task.Name,
		Description:  task.Description,
		StoryPoints:  task.StoryPoints,
		Status:       task.Status,
		AssignedTo:   task.AssignedTo,
		DueDate:      task.DueDate,
		Dependencies: deps,
	}
}

// NewBoardResponse converts a board snapshot
func NewBoardResponse(board domain.Board, view string) *BoardResponse {
	resp := &BoardResponse{View: view, Columns: make([]ColumnResponse, 0, len(board.Columns))}
	for _, c := range board.Columns {
		col := ColumnResponse{
			ColumnID:    c.ID,
			Name:        c.Name,
			Description: c.Description,
			StoryPoints: c.StoryPoints(),
			Tasks:       make([]TaskResponse, 0, len(c.Tasks)),
		}
		for _, t := range c.Tasks {
			col.Tasks = append(col.Tasks, NewTaskResponse(t, board))
		}
		resp.Columns = append(resp.Columns, col)
	}
	return resp
}

// NewTaskListResponse converts tasks against the board they came from
func NewTaskListResponse(tasks []domain.Task, board domain.Board) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t, board))
	}
	return out
}

// AddTaskRequest represents a new task. Omitted fields take defaults:
// status Open, story points 1.
type AddTaskRequest struct {
	Name         string            `json:"name" binding:"required,max=200" example:"Password reset"`
	Description  string            `json:"description" binding:"max=2000"`
	StoryPoints  *int              `json:"storyPoints" binding:"omitempty,min=0,max=100" example:"3"`
	Status       domain.TaskStatus `json:"status" example:"Open"`
	AssignedTo   string            `json:"assignedTo" binding:"max=100"`
	DueDate      *time.Time        `json:"dueDate,omitempty"`
	Dependencies []uuid.UUID       `json:"dependencies"`
}

// AddTaskResponse returns the created task and the new board
type AddTaskResponse struct {
	Task  TaskResponse   `json:"task"`
	Board *BoardResponse `json:"board"`
}

// UpdateTaskRequest replaces every editable field of a task.
// columnId must be the task's current column; use the move endpoint to relocate.
type UpdateTaskRequest struct {
	ColumnID     uuid.UUID         `json:"columnId" binding:"required"`
	Name         string            `json:"name" binding:"required,max=200"`
	Description  string            `json:"description" binding:"max=2000"`
	StoryPoints  *int              `json:"storyPoints" binding:"required,min=0,max=100"`
	Status       domain.TaskStatus `json:"status" binding:"required"`
	AssignedTo   string            `json:"assignedTo" binding:"max=100"`
	DueDate      *time.Time        `json:"dueDate,omitempty"`
	Dependencies []uuid.UUID       `json:"dependencies"`
}

// ToDomain builds the replacement task for taskID
func (r UpdateTaskRequest) ToDomain(taskID uuid.UUID) domain.Task {
	deps := r.Dependencies
	if deps == nil {
		deps = []uuid.UUID{}
	}
	return domain.Task{
		ID:           taskID,
		ColumnID:     r.ColumnID,
		Name:         r.Name,
		Description:  r.Description,
		StoryPoints:  *r.StoryPoints,
		Status:       r.Status,
		AssignedTo:   r.AssignedTo,
		DueDate:      r.DueDate,
		Dependencies: deps,
	}
}

// MoveTaskRequest relocates a task to the end of another column
type MoveTaskRequest struct {
	SourceColumnID uuid.UUID `json:"sourceColumnId" binding:"required"`
	TargetColumnID uuid.UUID `json:"targetColumnId" binding:"required"`
}

// SetAssigneeRequest sets or, with an empty name, clears the assignee
type SetAssigneeRequest struct {
	ColumnID   uuid.UUID `json:"columnId" binding:"required"`
	AssignedTo string    `json:"assignedTo" binding:"max=100"`
}

// AddDependencyRequest links a task to the task it depends on
type AddDependencyRequest struct {
	ColumnID    uuid.UUID `json:"columnId" binding:"required"`
	DependsOnID uuid.UUID `json:"dependsOnId" binding:"required"`
}
