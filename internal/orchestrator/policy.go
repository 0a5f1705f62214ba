package orchestrator

import (
	"fmt"
	"strings"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/threshold"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/trace"
)

const (
	reasonGroundFirst = "Ground-First: always executes"
	reasonMet         = "Resolver met thresholds"
	reasonBelow       = "Resolver below thresholds"
	reasonDisabled    = "Disabled by options"
	reasonNoResults   = "Resolver returned no results"
)

// Decision is the routing outcome for one run, computed once the resolver has
// answered.
type Decision struct {
	Steps      []trace.Step
	Web        bool
	LLM        bool
	Reason     string
	Evaluation threshold.Result
	// NoResults short-circuits the run with a templated message.
	NoResults bool
	// Strict runs render by answer mode and tag the trace with an answer.
	Strict  bool
	Version string
}

// Policy maps a resolver result and the run options to a Decision. Decide must
// be pure.
type Policy interface {
	Name() string
	Decide(res grounding.ResolverResult, opts grounding.Options) Decision
	// PrefetchWeb reports whether web retrieval is already known to run from
	// the options alone, which lets the caller overlap it with the resolver.
	PrefetchWeb(opts grounding.Options) bool
}

// NewPolicy returns the policy named by cfg.Orchestrator.Policy.
func NewPolicy(cfg *config.Config) (Policy, error) {
	eval := threshold.Evaluator{Thresholds: threshold.Thresholds{
		CoverageMin:   cfg.Orchestrator.CoverageMin,
		ConfidenceMin: cfg.Orchestrator.ConfidenceMin,
	}}
	switch cfg.Orchestrator.Policy {
	case config.PolicyStrict, "":
		return StrictPolicy{Evaluator: eval}, nil
	case config.PolicyThreshold:
		return ThresholdPolicy{Evaluator: eval}, nil
	default:
		return nil, fmt.Errorf("unknown orchestrator policy %q", cfg.Orchestrator.Policy)
	}
}

// StrictPolicy escalates by requested answer mode. Thresholds are evaluated for
// the trace but never gate a step.
type StrictPolicy struct {
	Evaluator threshold.Evaluator
}

func (StrictPolicy) Name() string { return config.PolicyStrict }

func (p StrictPolicy) PrefetchWeb(opts grounding.Options) bool {
	return opts.Mode().UsesWeb()
}

func (p StrictPolicy) Decide(res grounding.ResolverResult, opts grounding.Options) Decision {
	mode := opts.Mode()
	web, llm := mode.UsesWeb(), mode.UsesModel()

	webReason := fmt.Sprintf("answerMode=%s does not use web retrieval", mode)
	if web {
		webReason = fmt.Sprintf("answerMode=%s requires web retrieval", mode)
	}
	llmReason := fmt.Sprintf("answerMode=%s does not use model synthesis", mode)
	if llm {
		llmReason = fmt.Sprintf("answerMode=%s requires model synthesis", mode)
	}

	return Decision{
		Steps: []trace.Step{
			{Name: trace.StepResolver, Executed: true, Reason: reasonGroundFirst},
			{Name: trace.StepWeb, Executed: web, Reason: webReason},
			{Name: trace.StepLLM, Executed: llm, Reason: llmReason},
		},
		Web:        web,
		LLM:        llm,
		Reason:     "Strict answer mode: " + string(mode),
		Evaluation: p.Evaluator.Evaluate(res),
		Strict:     true,
		Version:    trace.VersionStrict,
	}
}

// ThresholdPolicy escalates only when the resolver falls below thresholds and
// the options allow it.
type ThresholdPolicy struct {
	Evaluator threshold.Evaluator
}

func (ThresholdPolicy) Name() string { return config.PolicyThreshold }

// PrefetchWeb is always false: web depends on the resolver's scores.
func (ThresholdPolicy) PrefetchWeb(grounding.Options) bool { return false }

func (p ThresholdPolicy) Decide(res grounding.ResolverResult, opts grounding.Options) Decision {
	if noResults(res) {
		via := res.RoutedVia
		if via == "" {
			via = grounding.RoutedViaIdentifier
		}
		return Decision{
			Steps: []trace.Step{
				{Name: trace.StepResolver, Executed: true, Reason: "Ground-First (" + via + ")"},
				{Name: trace.StepWeb, Executed: false, Reason: reasonNoResults},
				{Name: trace.StepLLM, Executed: false, Reason: reasonNoResults},
			},
			Reason: reasonNoResults,
			Evaluation: threshold.Result{
				CoverageMin:   p.Evaluator.Thresholds.CoverageMin,
				ConfidenceMin: p.Evaluator.Thresholds.ConfidenceMin,
			},
			NoResults: true,
			Version:   trace.VersionThreshold,
		}
	}

	eval := p.Evaluator.Evaluate(res)
	d := Decision{Reason: eval.Notes, Evaluation: eval, Version: trace.VersionThreshold}
	steps := []trace.Step{{Name: trace.StepResolver, Executed: true, Reason: reasonGroundFirst}}
	if eval.Passed {
		d.Steps = append(steps,
			trace.Step{Name: trace.StepWeb, Reason: reasonMet},
			trace.Step{Name: trace.StepLLM, Reason: reasonMet},
		)
		return d
	}

	d.Web, d.LLM = opts.EnableWebRag, opts.EnableLlm
	d.Steps = append(steps,
		gatedStep(trace.StepWeb, d.Web),
		gatedStep(trace.StepLLM, d.LLM),
	)
	return d
}

func gatedStep(name string, enabled bool) trace.Step {
	if enabled {
		return trace.Step{Name: name, Executed: true, Reason: reasonBelow}
	}
	return trace.Step{Name: name, Reason: reasonDisabled}
}

func noResults(res grounding.ResolverResult) bool {
	if res.Coverage != 0 || len(res.Snippets) != 0 {
		return false
	}
	return strings.Contains(res.Notes, "node not found") || strings.Contains(res.Notes, "no query results")
}

// noResultsMessage is the templated answer for an empty resolver result.
func noResultsMessage(query, routedVia, owner string) string {
	if strings.TrimSpace(owner) == "" {
		owner = "agentnet"
	}
	if routedVia == grounding.RoutedViaQuery {
		return fmt.Sprintf("No matching capsules found for \"%s\" under owner \"%s\".", query, owner)
	}
	return fmt.Sprintf("No node found for identifier \"%s\" under owner \"%s\". Use a known AgentNet identifier.", query, owner)
}
