package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/cupidworks/valentine-backend/pkg/errors"
)

// Response defines the base API payload for the v1 surface.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

// Status writes the legacy registration payload shape: a machine-readable
// status string plus a human-readable message, with optional extra fields.
// The registration frontend predates the success/data envelope and keys off
// the status field directly.
func Status(c *gin.Context, httpStatus int, status, message string, extra gin.H) {
	payload := gin.H{
		"status":  status,
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	c.JSON(httpStatus, payload)
}
