package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentnet/ant-orchestrator/internal/http/response"
	"github.com/agentnet/ant-orchestrator/internal/platform/ctxutil"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// Recovery turns handler panics into a generic 500 without internal details.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			fields := append([]any{"path", c.Request.URL.Path, "panic", recovered}, ctxutil.LogFields(c.Request.Context())...)
			log.Error("handler panic", fields...)
		}
		response.AbortError(c, http.StatusInternalServerError, response.CodeInternal, errors.New("internal"))
	})
}
