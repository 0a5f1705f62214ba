package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentnet/ant-orchestrator/internal/observability"
)

// Metrics records request counts and latency by matched route.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
