package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/dto"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

type TipHandler struct {
	sessionService service.SessionService
	logger         *zap.Logger
}

func NewTipHandler(sessionService service.SessionService, logger *zap.Logger) *TipHandler {
	return &TipHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// GetTip godoc
// @Summary      Get an agile best practice tip
// @Description  Phase and interaction are derived from the session when omitted. 503 means tips are unavailable; clients hide the feature.
// @Tags         tips
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session ID (UUID)"
// @Param        request body dto.TipRequest false "Optional context"
// @Success      200 {object} response.SuccessResponse{data=dto.TipResponse}
// @Failure      503 {object} response.ErrorResponse
// @Router       /sessions/{sessionId}/tip [post]
func (h *TipHandler) GetTip(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId", "session ID")
	if !ok {
		return
	}

	var req dto.TipRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			sendBindError(c, err)
			return
		}
	}

	tip, err := h.sessionService.GetTip(c.Request.Context(), sessionID, service.TipHint{
		ProjectPhase:    req.ProjectPhase,
		UserInteraction: req.UserInteraction,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.TipResponse{Tip: tip.Tip, Reasoning: tip.Reasoning})
}
