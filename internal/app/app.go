package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentnet/ant-orchestrator/internal/audit"
	"github.com/agentnet/ant-orchestrator/internal/clients/redis"
	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/data/db"
	apphttp "github.com/agentnet/ant-orchestrator/internal/http"
	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const serviceVersion = "0.2.0"

type App struct {
	Log          *logger.Logger
	Cfg          *config.Config
	Metrics      *observability.Metrics
	DB           *db.Service
	Traces       redis.TraceStore
	Audit        *audit.Async
	Orchestrator *orchestrator.Orchestrator
	Server       *apphttp.Server

	otelShutdown func(context.Context) error
}

// New loads configuration from the environment and wires the service.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "ant-orchestrator",
		Environment: cfg.Env,
		Version:     serviceVersion,
	})
	metrics := observability.NewMetrics()

	gateways, err := wireGateways(cfg, log)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	policy, err := orchestrator.NewPolicy(cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}

	stores, err := wireStorage(ctx, cfg, log)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}

	recorder := wireAudit(cfg, log, metrics, stores)

	orch := orchestrator.New(orchestrator.Deps{
		Resolver:    gateways.Resolver,
		Web:         gateways.Web,
		Model:       gateways.Model,
		Policy:      policy,
		Recorder:    recorder,
		Metrics:     metrics,
		Log:         log,
		ParallelWeb: cfg.Orchestrator.ParallelWeb,
		OwnerSlug:   cfg.Orchestrator.OwnerSlug,
	})

	handlers := wireHandlers(log, orch, stores)
	middleware := wireMiddleware(log, cfg)
	server := apphttp.NewServer(cfg.HTTP, wireRouterConfig(cfg, log, metrics, handlers, middleware))

	log.Info("orchestrator ready",
		"policy", policy.Name(),
		"resolver_mode", cfg.Resolver.Mode,
		"web_mode", cfg.Web.Mode,
		"model_mode", cfg.Model.Mode,
		"db", stores.DB.Reachable(),
		"trace_cache", stores.Traces != nil,
	)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		DB:           stores.DB,
		Traces:       stores.Traces,
		Audit:        recorder,
		Orchestrator: orch,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http listening", "addr", a.Server.Addr())
		errCh <- a.Server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx := context.Background()
	if err := a.Server.Shutdown(shutdownCtx, a.Cfg.HTTP.ShutdownTimeout.Duration); err != nil {
		a.Log.Warn("http shutdown", "error", err)
	}
	return <-errCh
}

// Close drains in-flight audit records and releases backends.
func (a *App) Close() {
	if a == nil {
		return
	}
	timeout := 15 * time.Second
	if a.Cfg != nil && a.Cfg.HTTP.ShutdownTimeout.Duration > 0 {
		timeout = a.Cfg.HTTP.ShutdownTimeout.Duration
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.Audit != nil {
		if err := a.Audit.Wait(ctx); err != nil {
			a.Log.Warn("audit drain incomplete", "error", err)
		}
	}
	if a.Traces != nil {
		_ = a.Traces.Close()
	}
	if err := a.DB.Close(); err != nil {
		a.Log.Warn("db close", "error", err)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
