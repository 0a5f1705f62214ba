package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the trace store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db         Reachability
	traceCache Pinger
}

// NewHealthHandler accepts nil dependencies for disabled backends.
func NewHealthHandler(db Reachability, traceCache Pinger) *HealthHandler {
	return &HealthHandler{db: db, traceCache: traceCache}
}

// GET /api/health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbOK := h.db != nil && h.db.Reachable()

	cacheOK := false
	if h.traceCache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		cacheOK = h.traceCache.Ping(ctx) == nil
		cancel()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbOK, "traceCache": cacheOK})
}
