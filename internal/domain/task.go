package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// TaskStatus constants. Any status may move to any other status.
const (
	TaskStatusOpen       TaskStatus = "Open"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusBlocked    TaskStatus = "Blocked"
	TaskStatusDone       TaskStatus = "Done"
)

// DefaultStoryPoints is applied to new tasks that carry no estimate
const DefaultStoryPoints = 1

// UnknownTaskName is displayed for dependency ids that no longer resolve to a task
const UnknownTaskName = "Unknown Task"

// statusPrecedence is the fixed ordering used by the sorted board view
var statusPrecedence = map[TaskStatus]int{
	TaskStatusBlocked:    0,
	TaskStatusInProgress: 1,
	TaskStatusOpen:       2,
	TaskStatusDone:       3,
}

// IsValid reports whether s is one of the four known statuses
func (s TaskStatus) IsValid() bool {
	_, ok := statusPrecedence[s]
	return ok
}

// Precedence returns the sort rank of the status. Unknown statuses sort last.
func (s TaskStatus) Precedence() int {
	if p, ok := statusPrecedence[s]; ok {
		return p
	}
	return len(statusPrecedence)
}

// AllTaskStatuses returns the statuses in sorted-view order
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusBlocked, TaskStatusInProgress, TaskStatusOpen, TaskStatusDone}
}

// Task represents a unit of work owned by exactly one column
type Task struct {
	ID           uuid.UUID   `json:"id"`
	ColumnID     uuid.UUID   `json:"columnId"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	StoryPoints  int         `json:"storyPoints"`
	Status       TaskStatus  `json:"status"`
	AssignedTo   string      `json:"assignedTo,omitempty"`
	DueDate      *time.Time  `json:"dueDate,omitempty"`
	Dependencies []uuid.UUID `json:"dependencies"`
}

// IsAssigned reports whether the task has a non-empty assignee
func (t Task) IsAssigned() bool {
	return t.AssignedTo != ""
}

// HasDependency reports whether id is already in the dependency set
func (t Task) HasDependency(id uuid.UUID) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	out.Dependencies = make([]uuid.UUID, len(t.Dependencies))
	copy(out.Dependencies, t.Dependencies)
	return out
}
