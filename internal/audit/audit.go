// Package audit records finished runs without holding up the response. Every
// sink is fail-open: errors are counted and logged once, never returned to the
// orchestrator.
package audit

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/trace"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// Record is one completed run.
type Record struct {
	RequestID        string
	ConversationID   string
	Query            string
	Response         string
	Trace            trace.Trace
	IdentitySnapshot *grounding.IdentitySnapshot
}

type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
}

// Multi writes to every sink concurrently and joins their errors.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Write(ctx context.Context, rec Record) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, s := range m {
		g.Go(func() error {
			errs[i] = s.Write(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Guarded counts every write and warns at most once per process on failure.
type Guarded struct {
	sink    Sink
	once    *logger.Once
	metrics *observability.Metrics
}

func Guard(sink Sink, once *logger.Once, metrics *observability.Metrics) *Guarded {
	return &Guarded{sink: sink, once: once, metrics: metrics}
}

func (g *Guarded) Name() string { return g.sink.Name() }

// Write swallows the sink's error after reporting it.
func (g *Guarded) Write(ctx context.Context, rec Record) error {
	err := g.sink.Write(ctx, rec)
	g.metrics.ObserveAudit(g.sink.Name(), err)
	if err != nil {
		g.once.Warn("audit: write failed", "sink", g.sink.Name(), "request_id", rec.RequestID, "error", err)
	}
	return nil
}
