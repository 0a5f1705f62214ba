package audit

import (
	"context"
	"sync"
	"time"

	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const defaultTimeout = 10 * time.Second

// Async hands records to a sink on a background goroutine. Each write gets its
// own context detached from the request.
type Async struct {
	sink    Sink
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewAsync(sink Sink, timeout time.Duration, log *logger.Logger) *Async {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Async{sink: sink, timeout: timeout, log: log.With("service", "AuditDispatcher")}
}

// Submit returns immediately.
func (a *Async) Submit(rec Record) {
	if a == nil || a.sink == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("audit: sink panicked", "request_id", rec.RequestID, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.sink.Write(ctx, rec); err != nil {
			a.log.Debug("audit: write returned error", "request_id", rec.RequestID, "error", err)
		}
	}()
}

// Wait blocks until in-flight records finish or ctx ends.
func (a *Async) Wait(ctx context.Context) error {
	if a == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
