package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// IDGenerator produces process-unique identifiers
type IDGenerator func() uuid.UUID

// Materializer turns id-less columns from the board generation service into a
// canonical Board. Each call yields fresh ids, so materializing the same input
// twice produces two independent boards.
type Materializer struct {
	newID IDGenerator
}

// NewMaterializer creates a Materializer. A nil generator falls back to uuid.New.
func NewMaterializer(newID IDGenerator) *Materializer {
	if newID == nil {
		newID = uuid.New
	}
	return &Materializer{newID: newID}
}

// Materialize assigns ids, links every task to its column and fills defaults
// (status Open, story points 1, empty dependency set). Column and task order
// follows the input. A column or task without a name is rejected with INVALID_INPUT.
func (m *Materializer) Materialize(raw []domain.RawColumn) (domain.Board, error) {
	board := domain.Board{Columns: make([]domain.Column, 0, len(raw))}

	for ci, rc := range raw {
		if strings.TrimSpace(rc.Name) == "" {
			return domain.Board{}, response.NewInvalidInputError(
				"Generated column is missing a name",
				fmt.Sprintf("column index %d", ci))
		}

		column := domain.Column{
			ID:          m.newID(),
			Name:        rc.Name,
			Description: rc.Description,
			Tasks:       make([]domain.Task, 0, len(rc.Tasks)),
		}

		for ti, rt := range rc.Tasks {
			if strings.TrimSpace(rt.Name) == "" {
				return domain.Board{}, response.NewInvalidInputError(
					"Generated task is missing a name",
					fmt.Sprintf("column %q, task index %d", rc.Name, ti))
			}

			points := rt.StoryPoints
			if points == 0 {
				points = domain.DefaultStoryPoints
			}

			column.Tasks = append(column.Tasks, domain.Task{
				ID:           m.newID(),
				ColumnID:     column.ID,
				Name:         rt.Name,
				Description:  rt.Description,
				StoryPoints:  points,
				Status:       domain.TaskStatusOpen,
				AssignedTo:   strings.TrimSpace(rt.AssignedTo),
				Dependencies: []uuid.UUID{},
			})
		}

		board.Columns = append(board.Columns, column)
	}

	if err := board.Validate(); err != nil {
		return domain.Board{}, response.NewAppError(response.ErrCodeInternal, "Materialized board is inconsistent", err.Error())
	}
	return board, nil
}
