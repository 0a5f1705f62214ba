package app

import (
	"github.com/agentnet/ant-orchestrator/internal/audit"
	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/data/aggregates"
	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// wireAudit returns the recorder the orchestrator submits finished runs to.
// Each sink warns at most once per process.
func wireAudit(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics, s Storage) *audit.Async {
	log.Info("Wiring audit sinks...")
	var sinks audit.Multi

	if s.DB.Reachable() {
		runs := aggregates.NewChatRunAggregate(aggregates.ChatRunAggregateDeps{
			DB:            s.DB.DB(),
			Log:           log,
			Conversations: s.Conversations,
			Messages:      s.Messages,
		})
		sinks = append(sinks, audit.Guard(audit.NewDBSink(runs), logger.NewOnce(log), metrics))
	}
	if s.Traces != nil {
		sinks = append(sinks, audit.Guard(audit.NewTraceCacheSink(s.Traces), logger.NewOnce(log), metrics))
	}
	return audit.NewAsync(sinks, cfg.Orchestrator.AuditTimeout.Duration, log)
}
