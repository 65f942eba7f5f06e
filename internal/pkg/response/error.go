package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/apperror"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestID"

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// If it's not an AppError, it logs the cause and returns 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	ErrorWith(c, err, nil)
}

// ErrorWith behaves like Error and merges extra fields into the body.
func ErrorWith(c *gin.Context, err error, extra gin.H) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
		body := gin.H{"error": appErr.Message}
		for k, v := range appErr.Details {
			body[k] = v
		}
		for k, v := range extra {
			body[k] = v
		}
		c.JSON(appErr.Code, body)
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString(RequestIDKey),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
