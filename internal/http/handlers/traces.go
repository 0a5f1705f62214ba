package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentnet/ant-orchestrator/internal/clients/redis"
	"github.com/agentnet/ant-orchestrator/internal/http/response"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

var errTraceCacheUnavailable = errors.New("trace cache unavailable")

type TracesHandler struct {
	log   *logger.Logger
	store redis.TraceStore
}

// NewTracesHandler accepts a nil store when the trace cache is off.
func NewTracesHandler(log *logger.Logger, store redis.TraceStore) *TracesHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TracesHandler{log: log.With("handler", "TracesHandler"), store: store}
}

// GET /api/traces/:requestId
func (h *TracesHandler) GetTrace(c *gin.Context) {
	if h.store == nil {
		response.RespondError(c, http.StatusServiceUnavailable, response.CodeTraceCacheUnavailable, errTraceCacheUnavailable)
		return
	}
	requestID := c.Param("requestId")
	raw, err := h.store.Get(c.Request.Context(), requestID)
	switch {
	case errors.Is(err, redis.ErrTraceNotFound):
		response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err)
	case err != nil:
		h.log.Warn("trace lookup failed", "request_id", requestID, "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, response.CodeTraceCacheUnavailable, errTraceCacheUnavailable)
	default:
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	}
}
