package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const keyPrefix = "trace:"

// ErrTraceNotFound is returned by Get for unknown or expired request ids.
var ErrTraceNotFound = errors.New("trace not found")

type TraceStore interface {
	Save(ctx context.Context, requestID string, trace any) error
	Get(ctx context.Context, requestID string) (json.RawMessage, error)
	Ping(ctx context.Context) error
	Close() error
}

type traceStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewTraceStore connects to addr and pings it once.
func NewTraceStore(ctx context.Context, addr, password string, db int, ttl time.Duration, log *logger.Logger) (TraceStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewTraceStoreWithClient(rdb, ttl, log), nil
}

// NewTraceStoreWithClient wraps an existing client without pinging it.
func NewTraceStoreWithClient(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) TraceStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &traceStore{log: log.With("service", "RedisTraceStore"), rdb: rdb, ttl: ttl}
}

func Key(requestID string) string { return keyPrefix + requestID }

func (s *traceStore) Save(ctx context.Context, requestID string, trace any) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis trace store not initialized")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return fmt.Errorf("missing request id")
	}
	raw, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return s.rdb.Set(ctx, Key(requestID), raw, s.ttl).Err()
}

func (s *traceStore) Get(ctx context.Context, requestID string) (json.RawMessage, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("redis trace store not initialized")
	}
	raw, err := s.rdb.Get(ctx, Key(strings.TrimSpace(requestID))).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrTraceNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func (s *traceStore) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis trace store not initialized")
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *traceStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
