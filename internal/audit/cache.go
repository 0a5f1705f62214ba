package audit

import (
	"context"

	"github.com/agentnet/ant-orchestrator/internal/clients/redis"
)

// TraceCacheSink stores the trace under its request id for later lookup.
type TraceCacheSink struct {
	store redis.TraceStore
}

func NewTraceCacheSink(store redis.TraceStore) *TraceCacheSink {
	return &TraceCacheSink{store: store}
}

func (*TraceCacheSink) Name() string { return "trace_cache" }

func (s *TraceCacheSink) Write(ctx context.Context, rec Record) error {
	return s.store.Save(ctx, rec.RequestID, rec.Trace)
}
