package response

import (
	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed responses
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   interface{} `json:"error"`
}

// ErrorDetail describes a failure
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendSuccess writes a success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// SendError writes an error envelope
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
