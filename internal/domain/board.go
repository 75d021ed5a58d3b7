package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Column represents a named, ordered grouping of tasks (an epic or feature)
type Column struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tasks       []Task    `json:"tasks"`
}

// Clone returns a deep copy of the column
func (c Column) Clone() Column {
	out := c
	out.Tasks = make([]Task, len(c.Tasks))
	for i, t := range c.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// TaskIndex returns the position of the task within the column, or -1
func (c Column) TaskIndex(taskID uuid.UUID) int {
	for i, t := range c.Tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// StoryPoints returns the sum of story points in the column
func (c Column) StoryPoints() int {
	total := 0
	for _, t := range c.Tasks {
		total += t.StoryPoints
	}
	return total
}

// Board is the ordered sequence of columns for one session
type Board struct {
	Columns []Column `json:"columns"`
}

// Clone returns a deep copy of the board
func (b Board) Clone() Board {
	out := Board{Columns: make([]Column, len(b.Columns))}
	for i, c := range b.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// ColumnIndex returns the position of the column within the board, or -1
func (b Board) ColumnIndex(columnID uuid.UUID) int {
	for i, c := range b.Columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// FindTask locates a task anywhere on the board
func (b Board) FindTask(taskID uuid.UUID) (Task, bool) {
	for _, c := range b.Columns {
		if i := c.TaskIndex(taskID); i >= 0 {
			return c.Tasks[i], true
		}
	}
	return Task{}, false
}

// AllTasks returns every task on the board in column order
func (b Board) AllTasks() []Task {
	var tasks []Task
	for _, c := range b.Columns {
		tasks = append(tasks, c.Tasks...)
	}
	return tasks
}

// TaskCount returns the number of tasks across all columns
func (b Board) TaskCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}

// TaskName resolves a task id to its name. Dangling ids resolve to UnknownTaskName.
func (b Board) TaskName(taskID uuid.UUID) string {
	if t, ok := b.FindTask(taskID); ok {
		return t.Name
	}
	return UnknownTaskName
}

// Validate checks the structural invariants of the board: every task's ColumnID
// matches its owning column, ids are unique, and dependency sets hold neither the
// task's own id nor duplicates. Dangling dependency ids are allowed.
func (b Board) Validate() error {
	seen := make(map[uuid.UUID]string)
	for _, c := range b.Columns {
		if prev, ok := seen[c.ID]; ok {
			return fmt.Errorf("duplicate id %s (column %q, already used by %s)", c.ID, c.Name, prev)
		}
		seen[c.ID] = "column " + c.Name
		for _, t := range c.Tasks {
			if t.ColumnID != c.ID {
				return fmt.Errorf("task %s has columnId %s but is held by column %s", t.ID, t.ColumnID, c.ID)
			}
			if prev, ok := seen[t.ID]; ok {
				return fmt.Errorf("duplicate id %s (task %q, already used by %s)", t.ID, t.Name, prev)
			}
			seen[t.ID] = "task " + t.Name
			deps := make(map[uuid.UUID]struct{}, len(t.Dependencies))
			for _, dep := range t.Dependencies {
				if dep == t.ID {
					return fmt.Errorf("task %s depends on itself", t.ID)
				}
				if _, dup := deps[dep]; dup {
					return fmt.Errorf("task %s lists dependency %s more than once", t.ID, dep)
				}
				deps[dep] = struct{}{}
			}
		}
	}
	return nil
}

// BoardSummary aggregates estimates and assignments across the board
type BoardSummary struct {
	ColumnCount       int                `json:"columnCount"`
	TaskCount         int                `json:"taskCount"`
	TotalStoryPoints  int                `json:"totalStoryPoints"`
	PointsByStatus    map[TaskStatus]int `json:"pointsByStatus"`
	TasksByAssignee   map[string]int     `json:"tasksByAssignee"`
	DanglingDepsCount int                `json:"danglingDependencies"`
}

// Summary computes a BoardSummary. Unassigned tasks are counted under "".
func (b Board) Summary() BoardSummary {
	s := BoardSummary{
		ColumnCount:     len(b.Columns),
		PointsByStatus:  make(map[TaskStatus]int),
		TasksByAssignee: make(map[string]int),
	}
	for _, status := range AllTaskStatuses() {
		s.PointsByStatus[status] = 0
	}
	for _, c := range b.Columns {
		for _, t := range c.Tasks {
			s.TaskCount++
			s.TotalStoryPoints += t.StoryPoints
			s.PointsByStatus[t.Status] += t.StoryPoints
			s.TasksByAssignee[t.AssignedTo]++
			for _, dep := range t.Dependencies {
				if _, ok := b.FindTask(dep); !ok {
					s.DanglingDepsCount++
				}
			}
		}
	}
	return s
}
