package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

func newStore(t *testing.T, ttl time.Duration) (TraceStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTraceStoreWithClient(rdb, ttl, logger.NewNop()), mr
}

func TestTraceStoreSaveGet(t *testing.T) {
	store, mr := newStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Save(ctx, "req-1", map[string]any{"traceVersion": "0.2", "requestId": "req-1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := store.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `{"requestId":"req-1","traceVersion":"0.2"}` {
		t.Fatalf("raw=%s", raw)
	}
	if ttl := mr.TTL("trace:req-1"); ttl != time.Hour {
		t.Fatalf("ttl=%v", ttl)
	}
}

func TestTraceStoreExpiry(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, "req-2", map[string]string{"a": "b"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "req-2"); !errors.Is(err, ErrTraceNotFound) {
		t.Fatalf("expected ErrTraceNotFound, got %v", err)
	}
}

func TestTraceStoreValidation(t *testing.T) {
	store, _ := newStore(t, 0)
	if err := store.Save(context.Background(), " ", nil); err == nil {
		t.Fatalf("expected error for blank request id")
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestTraceStoreUnavailable(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	mr.Close()
	if err := store.Save(context.Background(), "req-3", 1); err == nil {
		t.Fatalf("expected error with redis down")
	}
}
