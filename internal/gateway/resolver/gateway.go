package resolver

import (
	"context"
	"fmt"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

type ResolveContext struct {
	ConversationID string
}

// Gateway fetches grounding for a query. Implementations never fail: transport
// and upstream problems are reported through ResolverResult.Notes.
type Gateway interface {
	Resolve(ctx context.Context, query string, rc ResolveContext) grounding.ResolverResult
}

// New builds the gateway selected by cfg.Resolver.Mode.
func New(cfg *config.Config, log *logger.Logger) (Gateway, error) {
	switch cfg.Resolver.Mode {
	case config.ModeMock:
		return NewMock(MockConfig{
			Latency:          cfg.Resolver.MockLatency,
			ForceFailAllowed: cfg.ForceFailAllowed(),
		}), nil
	case config.ModeHTTP:
		return NewHTTP(HTTPConfig{
			BaseURL:          cfg.Resolver.BaseURL,
			NodeEndpoint:     cfg.Resolver.NodeEndpoint,
			CapsulesEndpoint: cfg.Resolver.CapsulesEndpoint,
			QueryEndpoint:    cfg.Resolver.QueryEndpoint,
			APIKey:           cfg.Resolver.APIKey,
			OwnerSlug:        cfg.Resolver.OwnerSlug,
			Timeout:          cfg.Resolver.Timeout.Duration,
			QueryLimit:       cfg.Resolver.QueryLimit,
		}, log)
	default:
		return nil, fmt.Errorf("unknown resolver mode %q", cfg.Resolver.Mode)
	}
}
