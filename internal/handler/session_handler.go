package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/dto"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

type SessionHandler struct {
	sessionService service.SessionService
	logger         *zap.Logger
}

func NewSessionHandler(sessionService service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSession godoc
// @Summary      Start a planning session
// @Tags         sessions
// @Produce      json
// @Success      201 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Router       /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.sessionService.CreateSession(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, dto.NewSessionResponse(session))
}

// GetSession godoc
// @Summary      Get a planning session
// @Tags         sessions
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewSessionResponse(session))
}

// SuggestStories godoc
// @Summary      Suggest user stories for the project
// @Description  Stores the project details and asks the AI for 5 to 8 user stories
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        request body dto.ProjectDetailsRequest true "Project details"
// @Success      200 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse "AI service unavailable"
// @Router       /sessions/{sessionId}/stories/suggest [post]
func (h *SessionHandler) SuggestStories(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	var req dto.ProjectDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	session, err := h.sessionService.SuggestStories(c.Request.Context(), sessionID, req.ToDomain())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewSessionResponse(session))
}

// SetProjectDetails godoc
// @Summary      Save project details without story suggestions
// @Description  Moves the session to story review with an empty story list
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        request body dto.ProjectDetailsRequest true "Project details"
// @Success      200 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/project [put]
func (h *SessionHandler) SetProjectDetails(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	var req dto.ProjectDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	session, err := h.sessionService.SetProjectDetails(c.Request.Context(), sessionID, req.ToDomain())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewSessionResponse(session))
}

// BackToDetails godoc
// @Summary      Return from story review to the details form
// @Tags         sessions
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Failure      409 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/back [post]
func (h *SessionHandler) BackToDetails(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	session, err := h.sessionService.BackToDetails(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewSessionResponse(session))
}

// GenerateBoard godoc
// @Summary      Generate the board from reviewed stories
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        request body dto.GenerateBoardRequest true "Reviewed stories"
// @Success      201 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Project details missing"
// @Failure      503 {object} response.ErrorResponse "AI service unavailable"
// @Router       /sessions/{sessionId}/board [post]
func (h *SessionHandler) GenerateBoard(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	var req dto.GenerateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	session, err := h.sessionService.GenerateBoard(c.Request.Context(), sessionID, req.Stories)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, dto.NewBoardResponse(*session.Board, dto.BoardViewStored))
}

// Reset godoc
// @Summary      Discard details, stories and board
// @Tags         sessions
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Router       /sessions/{sessionId}/reset [post]
func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	session, err := h.sessionService.Reset(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewSessionResponse(session))
}
