package app

import (
	"context"
	"strings"

	"github.com/agentnet/ant-orchestrator/internal/clients/redis"
	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/data/db"
	"github.com/agentnet/ant-orchestrator/internal/data/repos"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// Storage holds the optional backends. DB is never nil but may be unreachable;
// Traces is nil when the cache is off or down.
type Storage struct {
	DB            *db.Service
	Traces        redis.TraceStore
	Conversations repos.ConversationRepo
	Messages      repos.MessageRepo
}

func wireStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (Storage, error) {
	log.Info("Wiring storage...")
	var s Storage

	if cfg.DB.Persist {
		svc, err := db.Open(ctx, cfg.DB, log)
		if err != nil {
			return Storage{}, err
		}
		s.DB = svc
	} else {
		s.DB = db.FromGorm(nil, log)
	}
	if s.DB.Reachable() {
		s.Conversations = repos.NewConversationRepo(s.DB.DB(), log)
		s.Messages = repos.NewMessageRepo(s.DB.DB(), log)
	}

	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		store, err := redis.NewTraceStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TraceTTL.Duration, log)
		if err != nil {
			log.Warn("trace cache unavailable, running without it", "addr", cfg.Redis.Addr, "error", err)
		} else {
			s.Traces = store
		}
	}
	return s, nil
}
