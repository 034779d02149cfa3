package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"livraria/internal/shared"
)

// Stable error kinds written into the "error" field of every failure body.
const (
	KindInvalidInput     = "InvalidInput"
	KindNotFound         = "NotFound"
	KindConflict         = "Conflict"
	KindInvalidOperation = "InvalidOperation"
	KindRateLimited      = "RateLimited"
	KindMethodNotAllowed = "MethodNotAllowed"
	KindInternal         = "InternalError"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details"`
}

// Success writes data as the response body.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// NoContent writes an empty response with the given status.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error body and aborts the handler chain.
// A nil details value is rendered as an empty list.
func Error(c *gin.Context, statusCode int, kind string, details interface{}) {
	if details == nil {
		details = []string{}
	}
	c.AbortWithStatusJSON(statusCode, ErrorBody{
		Error:   kind,
		Details: details,
	})
}

// Common error responses

func InvalidInput(c *gin.Context, violations []shared.Violation) {
	if violations == nil {
		violations = []shared.Violation{}
	}
	Error(c, http.StatusBadRequest, KindInvalidInput, violations)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, KindNotFound, []string{message})
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, KindConflict, []string{message})
}

func InvalidOperation(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, KindInvalidOperation, []string{message})
}

func MethodNotAllowed(c *gin.Context) {
	Error(c, http.StatusMethodNotAllowed, KindMethodNotAllowed, []string{"method not allowed"})
}

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, KindRateLimited, nil)
}

// InternalServerError never exposes the underlying cause.
func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, KindInternal, nil)
}
