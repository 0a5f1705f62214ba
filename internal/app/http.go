package app

import (
	"strings"

	"github.com/agentnet/ant-orchestrator/internal/config"
	apphttp "github.com/agentnet/ant-orchestrator/internal/http"
	httpH "github.com/agentnet/ant-orchestrator/internal/http/handlers"
	httpMW "github.com/agentnet/ant-orchestrator/internal/http/middleware"
	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health        *httpH.HealthHandler
	Chat          *httpH.ChatHandler
	Conversations *httpH.ConversationsHandler
	Traces        *httpH.TracesHandler
}

func wireHandlers(log *logger.Logger, orch *orchestrator.Orchestrator, s Storage) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(s.DB, s.Traces),
		Chat:          httpH.NewChatHandler(log, orch),
		Conversations: httpH.NewConversationsHandler(log, s.DB, s.Conversations, s.Messages),
		Traces:        httpH.NewTracesHandler(log, s.Traces),
	}
}

func wireMiddleware(log *logger.Logger, cfg *config.Config) Middleware {
	log.Info("Wiring middleware...")
	var mw Middleware
	if secret := strings.TrimSpace(cfg.HTTP.JWTSecret); secret != "" {
		mw.Auth = httpMW.NewAuthMiddleware(log, secret)
	}
	return mw
}

func wireRouterConfig(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics, h Handlers, mw Middleware) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:                  log,
		Metrics:              metrics,
		CORSOrigins:          cfg.HTTP.CORSOrigins,
		MaxRequestBytes:      cfg.HTTP.MaxRequestBytes,
		AuthMiddleware:       mw.Auth,
		ChatHandler:          h.Chat,
		ConversationsHandler: h.Conversations,
		TracesHandler:        h.Traces,
		HealthHandler:        h.Health,
	}
}
