package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeNotFound              = "NOT_FOUND"
	CodeInternal              = "INTERNAL"
	CodeDBUnavailable         = "DB_UNAVAILABLE"
	CodeTraceCacheUnavailable = "TRACE_CACHE_UNAVAILABLE"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// AbortError is RespondError for middleware: later handlers do not run.
func AbortError(c *gin.Context, status int, code string, err error) {
	RespondError(c, status, code, err)
	c.Abort()
}

// RespondFlat writes the bare {"error": v} body used by the chat route.
func RespondFlat(c *gin.Context, status int, v any) {
	c.JSON(status, gin.H{"error": v})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
