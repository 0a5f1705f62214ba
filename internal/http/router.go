package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/agentnet/ant-orchestrator/internal/http/handlers"
	httpMW "github.com/agentnet/ant-orchestrator/internal/http/middleware"
	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const serviceName = "ant-orchestrator"

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	CORSOrigins     []string
	MaxRequestBytes int64

	// AuthMiddleware guards /api routes other than health when set.
	AuthMiddleware *httpMW.AuthMiddleware

	ChatHandler          *httpH.ChatHandler
	ConversationsHandler *httpH.ConversationsHandler
	TracesHandler        *httpH.TracesHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.MaxRequestBytes > 0 {
		r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))
	}

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Health (public)
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.HealthCheck)
		}
	}

	protected := api.Group("")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Chat
		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Chat)
		}

		// Conversations
		if cfg.ConversationsHandler != nil {
			protected.GET("/conversations/:conversationId/messages", cfg.ConversationsHandler.ListMessages)
		}

		// Traces
		if cfg.TracesHandler != nil {
			protected.GET("/traces/:requestId", cfg.TracesHandler.GetTrace)
		}
	}

	return r
}
