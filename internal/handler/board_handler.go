package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/dto"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

type BoardHandler struct {
	sessionService service.SessionService
	logger         *zap.Logger
}

func NewBoardHandler(sessionService service.SessionService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// GetBoard godoc
// @Summary      Get the current board
// @Description  view=sorted orders each column Blocked, In Progress, Open, Done without changing the stored board
// @Tags         board
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        view query string false "stored (default) or sorted"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/board [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	view := c.DefaultQuery("view", dto.BoardViewStored)
	var board domain.Board
	var err error
	switch view {
	case dto.BoardViewStored:
		board, err = h.sessionService.Board(c.Request.Context(), sessionID)
	case dto.BoardViewSorted:
		board, err = h.sessionService.SortedBoard(c.Request.Context(), sessionID)
	default:
		response.SendError(c, http.StatusBadRequest, response.ErrCodeInvalidInput, "view must be stored or sorted")
		return
	}
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewBoardResponse(board, view))
}

// GetSummary godoc
// @Summary      Story point and assignment totals for the board
// @Tags         board
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=domain.BoardSummary}
// @Router       /sessions/{sessionId}/board/summary [get]
func (h *BoardHandler) GetSummary(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	board, err := h.sessionService.Board(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, board.Summary())
}

// AddTask godoc
// @Summary      Add a task to the end of a column
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        request body dto.AddTaskRequest true "Task values"
// @Success      201 {object} response.SuccessResponse{data=dto.AddTaskResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/columns/{columnId}/tasks [post]
func (h *BoardHandler) AddTask(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}
	columnID, ok := parseUUIDParam(c, "columnId", "column ID")
	if !ok {
		return
	}

	var req dto.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	board, task, err := h.sessionService.AddTask(c.Request.Context(), sessionID, columnID, service.TaskInput{
		Name:         req.Name,
		Description:  req.Description,
		StoryPoints:  req.StoryPoints,
		Status:       req.Status,
		AssignedTo:   req.AssignedTo,
		DueDate:      req.DueDate,
		Dependencies: req.Dependencies,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, dto.AddTaskResponse{
		Task:  dto.NewTaskResponse(task, board),
		Board: dto.NewBoardResponse(board, dto.BoardViewStored),
	})
}

// UpdateTask godoc
// @Summary      Replace a task's fields
// @Description  columnId must be the task's current column; moving is done by the move endpoint
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.UpdateTaskRequest true "Task values"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/tasks/{taskId} [put]
func (h *BoardHandler) UpdateTask(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	board, err := h.sessionService.UpdateTask(c.Request.Context(), sessionID, req.ToDomain(taskID))
	h.sendBoard(c, board, err)
}

// DeleteTask godoc
// @Summary      Delete a task
// @Description  Deleting a task that is already gone succeeds and returns the unchanged board
// @Tags         tasks
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Router       /sessions/{sessionId}/columns/{columnId}/tasks/{taskId} [delete]
func (h *BoardHandler) DeleteTask(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}
	columnID, ok := parseUUIDParam(c, "columnId", "column ID")
	if !ok {
		return
	}

	board, err := h.sessionService.DeleteTask(c.Request.Context(), sessionID, taskID, columnID)
	h.sendBoard(c, board, err)
}

// MoveTask godoc
// @Summary      Move a task to the end of another column
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.MoveTaskRequest true "Source and target columns"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/tasks/{taskId}/move [post]
func (h *BoardHandler) MoveTask(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}

	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	board, err := h.sessionService.MoveTask(c.Request.Context(), sessionID, taskID, req.SourceColumnID, req.TargetColumnID)
	h.sendBoard(c, board, err)
}

// SetAssignee godoc
// @Summary      Set or clear a task's assignee
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.SetAssigneeRequest true "Assignee, empty to clear"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Router       /sessions/{sessionId}/tasks/{taskId}/assignee [put]
func (h *BoardHandler) SetAssignee(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}

	var req dto.SetAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	board, err := h.sessionService.SetAssignee(c.Request.Context(), sessionID, taskID, req.ColumnID, req.AssignedTo)
	h.sendBoard(c, board, err)
}

// AddDependency godoc
// @Summary      Make a task depend on another task
// @Description  Adding an existing link or a self link leaves the board unchanged
// @Tags         dependencies
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.AddDependencyRequest true "Dependency"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Router       /sessions/{sessionId}/tasks/{taskId}/dependencies [post]
func (h *BoardHandler) AddDependency(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}

	var req dto.AddDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	board, err := h.sessionService.AddDependency(c.Request.Context(), sessionID, taskID, req.ColumnID, req.DependsOnID)
	h.sendBoard(c, board, err)
}

// RemoveDependency godoc
// @Summary      Remove a dependency link
// @Tags         dependencies
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        depId path string true "Dependency task ID (UUID)"
// @Param        columnId query string true "Column holding the task"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Router       /sessions/{sessionId}/tasks/{taskId}/dependencies/{depId} [delete]
func (h *BoardHandler) RemoveDependency(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}
	depID, ok := parseUUIDParam(c, "depId", "dependency ID")
	if !ok {
		return
	}
	columnID, err := uuid.Parse(c.Query("columnId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeInvalidInput, "Invalid column ID")
		return
	}

	board, err := h.sessionService.RemoveDependency(c.Request.Context(), sessionID, taskID, columnID, depID)
	h.sendBoard(c, board, err)
}

// DependencyCandidates godoc
// @Summary      Tasks that can still be added as dependencies
// @Tags         dependencies
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.TaskResponse}
// @Router       /sessions/{sessionId}/tasks/{taskId}/dependency-candidates [get]
func (h *BoardHandler) DependencyCandidates(c *gin.Context) {
	sessionID, taskID, ok := h.sessionAndTask(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	candidates, err := h.sessionService.DependencyCandidates(ctx, sessionID, taskID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	board, err := h.sessionService.Board(ctx, sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewTaskListResponse(candidates, board))
}

func (h *BoardHandler) sessionAndTask(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	taskID, ok := parseUUIDParam(c, "taskId", "task ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, taskID, true
}

func (h *BoardHandler) sendBoard(c *gin.Context, board domain.Board, err error) {
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewBoardResponse(board, dto.BoardViewStored))
}
