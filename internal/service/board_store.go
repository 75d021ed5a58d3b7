package service

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// TaskInput carries caller-supplied values for a new task. Zero values fall back
// to defaults: status Open, story points 1, no assignee, no dependencies.
type TaskInput struct {
	Name         string
	Description  string
	StoryPoints  *int
	Status       domain.TaskStatus
	AssignedTo   string
	DueDate      *time.Time
	Dependencies []uuid.UUID
}

// BoardStore owns one Board. Every operation builds the next board on a copy,
// checks the board invariants and only then swaps it in, so a failed operation
// leaves the stored board untouched. Returned boards are snapshots the caller
// may keep or modify freely.
type BoardStore struct {
	board domain.Board
	newID IDGenerator
}

// NewBoardStore wraps an existing board. A nil generator falls back to uuid.New.
func NewBoardStore(initial domain.Board, newID IDGenerator) *BoardStore {
	if newID == nil {
		newID = uuid.New
	}
	return &BoardStore{board: initial.Clone(), newID: newID}
}

// Board returns a snapshot of the current board
func (s *BoardStore) Board() domain.Board {
	return s.board.Clone()
}

// MoveTask appends the task to the end of the target column and updates its
// ColumnID. Moving within the same column is a no-op.
func (s *BoardStore) MoveTask(taskID, sourceColumnID, targetColumnID uuid.UUID) (domain.Board, error) {
	if sourceColumnID == targetColumnID {
		return s.Board(), nil
	}

	next := s.board.Clone()
	src := next.ColumnIndex(sourceColumnID)
	if src < 0 {
		return domain.Board{}, response.NewNotFoundError("Source column not found", sourceColumnID.String())
	}
	dst := next.ColumnIndex(targetColumnID)
	if dst < 0 {
		return domain.Board{}, response.NewNotFoundError("Target column not found", targetColumnID.String())
	}
	ti := next.Columns[src].TaskIndex(taskID)
	if ti < 0 {
		return domain.Board{}, response.NewNotFoundError("Task not found in source column", taskID.String())
	}

	task := next.Columns[src].Tasks[ti]
	next.Columns[src].Tasks = append(next.Columns[src].Tasks[:ti], next.Columns[src].Tasks[ti+1:]...)
	task.ColumnID = targetColumnID
	next.Columns[dst].Tasks = append(next.Columns[dst].Tasks, task)

	return s.commit(next)
}

// UpdateTask replaces the stored task with the same id in updated.ColumnID.
// It never moves tasks between columns; a ColumnID that does not hold the task
// is NOT_FOUND. Duplicate dependencies collapse; a self-dependency is rejected.
func (s *BoardStore) UpdateTask(updated domain.Task) (domain.Board, error) {
	next := s.board.Clone()
	ci := next.ColumnIndex(updated.ColumnID)
	if ci < 0 {
		return domain.Board{}, response.NewNotFoundError("Column not found", updated.ColumnID.String())
	}
	ti := next.Columns[ci].TaskIndex(updated.ID)
	if ti < 0 {
		return domain.Board{}, response.NewNotFoundError("Task not found in column", updated.ID.String())
	}

	task, err := normalizeTask(updated.Clone())
	if err != nil {
		return domain.Board{}, err
	}
	next.Columns[ci].Tasks[ti] = task

	return s.commit(next)
}

// DeleteTask removes the task from the column. Unknown ids are ignored.
func (s *BoardStore) DeleteTask(taskID, columnID uuid.UUID) domain.Board {
	ci := s.board.ColumnIndex(columnID)
	if ci < 0 || s.board.Columns[ci].TaskIndex(taskID) < 0 {
		return s.Board()
	}

	next := s.board.Clone()
	ti := next.Columns[ci].TaskIndex(taskID)
	next.Columns[ci].Tasks = append(next.Columns[ci].Tasks[:ti], next.Columns[ci].Tasks[ti+1:]...)

	// removing a task cannot break an invariant
	s.board = next
	return s.Board()
}

// AddTask appends a new task with a fresh id to the column
func (s *BoardStore) AddTask(columnID uuid.UUID, input TaskInput) (domain.Board, domain.Task, error) {
	next := s.board.Clone()
	ci := next.ColumnIndex(columnID)
	if ci < 0 {
		return domain.Board{}, domain.Task{}, response.NewNotFoundError("Column not found", columnID.String())
	}

	task := domain.Task{
		ID:           s.newID(),
		ColumnID:     columnID,
		Name:         input.Name,
		Description:  input.Description,
		StoryPoints:  domain.DefaultStoryPoints,
		Status:       domain.TaskStatusOpen,
		AssignedTo:   input.AssignedTo,
		Dependencies: append([]uuid.UUID(nil), input.Dependencies...),
	}
	if input.StoryPoints != nil {
		task.StoryPoints = *input.StoryPoints
	}
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.DueDate != nil {
		due := *input.DueDate
		task.DueDate = &due
	}

	task, err := normalizeTask(task)
	if err != nil {
		return domain.Board{}, domain.Task{}, err
	}
	next.Columns[ci].Tasks = append(next.Columns[ci].Tasks, task)

	board, err := s.commit(next)
	if err != nil {
		return domain.Board{}, domain.Task{}, err
	}
	return board, task.Clone(), nil
}

// SetAssignee sets or, with an empty name, clears the task's assignee
func (s *BoardStore) SetAssignee(taskID, columnID uuid.UUID, name string) (domain.Board, error) {
	task, err := s.taskIn(taskID, columnID)
	if err != nil {
		return domain.Board{}, err
	}
	task.AssignedTo = name
	return s.UpdateTask(task)
}

// AddDependency links the task to dependsOnID. It is a no-op when the link
// already exists or when dependsOnID is the task itself.
func (s *BoardStore) AddDependency(taskID, columnID, dependsOnID uuid.UUID) (domain.Board, error) {
	task, err := s.taskIn(taskID, columnID)
	if err != nil {
		return domain.Board{}, err
	}
	if dependsOnID == taskID || task.HasDependency(dependsOnID) {
		return s.Board(), nil
	}
	if _, ok := s.board.FindTask(dependsOnID); !ok {
		return domain.Board{}, response.NewNotFoundError("Dependency task not found", dependsOnID.String())
	}

	task.Dependencies = append(task.Dependencies, dependsOnID)
	return s.UpdateTask(task)
}

// RemoveDependency drops dependsOnID from the task's dependency set if present
func (s *BoardStore) RemoveDependency(taskID, columnID, dependsOnID uuid.UUID) (domain.Board, error) {
	task, err := s.taskIn(taskID, columnID)
	if err != nil {
		return domain.Board{}, err
	}
	if !task.HasDependency(dependsOnID) {
		return s.Board(), nil
	}

	deps := make([]uuid.UUID, 0, len(task.Dependencies)-1)
	for _, dep := range task.Dependencies {
		if dep != dependsOnID {
			deps = append(deps, dep)
		}
	}
	task.Dependencies = deps
	return s.UpdateTask(task)
}

// DependencyCandidates lists the tasks that can still be added as dependencies
// of taskID: every other task not already linked.
func (s *BoardStore) DependencyCandidates(taskID uuid.UUID) ([]domain.Task, error) {
	task, ok := s.board.FindTask(taskID)
	if !ok {
		return nil, response.NewNotFoundError("Task not found", taskID.String())
	}

	candidates := make([]domain.Task, 0)
	for _, t := range s.board.AllTasks() {
		if t.ID == taskID || task.HasDependency(t.ID) {
			continue
		}
		candidates = append(candidates, t.Clone())
	}
	return candidates, nil
}

// SortedView returns a copy of the board with each column's tasks ordered
// Blocked, In Progress, Open, Done. Ties keep their stored order.
func (s *BoardStore) SortedView() domain.Board {
	return SortByStatus(s.board)
}

// SortByStatus is the pure form of SortedView
func SortByStatus(board domain.Board) domain.Board {
	view := board.Clone()
	for i := range view.Columns {
		tasks := view.Columns[i].Tasks
		sort.SliceStable(tasks, func(a, b int) bool {
			return tasks[a].Status.Precedence() < tasks[b].Status.Precedence()
		})
	}
	return view
}

func (s *BoardStore) taskIn(taskID, columnID uuid.UUID) (domain.Task, error) {
	ci := s.board.ColumnIndex(columnID)
	if ci < 0 {
		return domain.Task{}, response.NewNotFoundError("Column not found", columnID.String())
	}
	ti := s.board.Columns[ci].TaskIndex(taskID)
	if ti < 0 {
		return domain.Task{}, response.NewNotFoundError("Task not found in column", taskID.String())
	}
	return s.board.Columns[ci].Tasks[ti].Clone(), nil
}

func (s *BoardStore) commit(next domain.Board) (domain.Board, error) {
	if err := next.Validate(); err != nil {
		return domain.Board{}, response.NewAppError(response.ErrCodeInternal, "Board invariant violated", err.Error())
	}
	s.board = next
	return s.Board(), nil
}

// normalizeTask enforces the per-task rules shared by AddTask and UpdateTask
func normalizeTask(task domain.Task) (domain.Task, error) {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" {
		return domain.Task{}, response.NewInvalidInputError("Task name is required", task.ID.String())
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusOpen
	}
	if !task.Status.IsValid() {
		return domain.Task{}, response.NewInvalidInputError("Unknown task status", string(task.Status))
	}
	task.AssignedTo = strings.TrimSpace(task.AssignedTo)

	deps := make([]uuid.UUID, 0, len(task.Dependencies))
	seen := make(map[uuid.UUID]struct{}, len(task.Dependencies))
	for _, dep := range task.Dependencies {
		if dep == task.ID {
			return domain.Task{}, response.NewInvalidInputError("A task cannot depend on itself", task.ID.String())
		}
		if _, ok := seen[dep]; ok {
			continue
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}
	task.Dependencies = deps
	return task, nil
}
