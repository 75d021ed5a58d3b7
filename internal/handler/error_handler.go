package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// handleServiceError maps service layer errors to appropriate HTTP responses
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		statusCode := mapErrorCodeToHTTPStatus(appErr.Code)
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Service error",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.String("details", appErr.Details),
				zap.String("path", c.FullPath()),
			)
		} else {
			logger.Debug("Request rejected",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.String("details", appErr.Details),
			)
		}
		response.SendError(c, statusCode, appErr.Code, appErr.Message)
		return
	}

	logger.Error("Unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case response.ErrCodeNotFound:
		return http.StatusNotFound
	case response.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case response.ErrCodeConflict:
		return http.StatusConflict
	case response.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseUUIDParam reads a UUID path parameter, writing a 400 response when it is malformed
func parseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeInvalidInput, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

func sendBindError(c *gin.Context, err error) {
	response.SendError(c, http.StatusBadRequest, response.ErrCodeInvalidInput, "Invalid request body: "+err.Error())
}
