package resolver

import (
	"context"
	"strings"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/gateway/simulate"
)

const forceFailToken = "forcefail"

type MockConfig struct {
	// Latency simulates upstream delay when true.
	Latency bool
	// ForceFailAllowed honours the force-fail token; false in a locked-down runtime.
	ForceFailAllowed bool
	Rand             simulate.Rand
}

type Mock struct {
	cfg MockConfig
	rnd simulate.Rand
}

func NewMock(cfg MockConfig) *Mock {
	return &Mock{cfg: cfg, rnd: simulate.Source(cfg.Rand)}
}

func (m *Mock) Resolve(ctx context.Context, query string, _ ResolveContext) grounding.ResolverResult {
	if m.cfg.Latency {
		simulate.Latency(ctx, m.rnd, 40, 30)
	}

	requested := strings.Contains(strings.ToLower(query), forceFailToken)
	forceFail := requested && m.cfg.ForceFailAllowed

	var coverage, confidence, score float64
	if forceFail {
		coverage = 0.3 + m.rnd.Float64()*0.2
		confidence = 0.3 + m.rnd.Float64()*0.2
		score = 0.3
	} else {
		coverage = 0.65 + m.rnd.Float64()*0.3
		confidence = 0.65 + m.rnd.Float64()*0.3
		score = 0.82
	}

	var notes string
	if requested && !forceFail {
		notes = "forcefail override ignored (production mode)"
	}

	return grounding.ResolverResult{
		Coverage:   grounding.Round3(coverage),
		Confidence: grounding.Round3(confidence),
		Snippets: []grounding.Snippet{{
			ID:       "snip-001",
			Text:     `Mock resolver result for: "` + query + `"`,
			Source:   "internal-kb",
			Citation: "capsule:snip-001",
			Score:    score,
		}},
		Mode:  grounding.ModeMock,
		Notes: notes,
	}
}
