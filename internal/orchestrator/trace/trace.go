// Package trace assembles the versioned execution record returned with every answer.
package trace

import (
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/threshold"
)

const (
	VersionThreshold = "0.1"
	VersionStrict    = "0.2"

	StepResolver = "resolver"
	StepWeb      = "webRag"
	StepLLM      = "llm"

	SourceResolver = "resolver"
	SourceWeb      = "web"
)

type Step struct {
	Name     string `json:"name"`
	Executed bool   `json:"executed"`
	Reason   string `json:"reason"`
}

type Routing struct {
	ResolverUsed bool   `json:"resolverUsed"`
	WebRagUsed   bool   `json:"webRagUsed"`
	RoutedVia    string `json:"routedVia"`
	Reason       string `json:"reason"`
	Steps        []Step `json:"steps"`
}

type Resolver struct {
	Coverage     float64 `json:"coverage"`
	Confidence   float64 `json:"confidence"`
	SnippetCount int     `json:"snippetCount"`
	Mode         string  `json:"mode"`
	RoutedVia    string  `json:"routedVia"`
}

type Thresholds struct {
	CoverageMin     float64 `json:"coverageMin"`
	ConfidenceMin   float64 `json:"confidenceMin"`
	Passed          bool    `json:"passed"`
	WebRagTriggered bool    `json:"webRagTriggered"`
	Notes           string  `json:"notes"`
}

type Source struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source"`
}

type Provenance struct {
	Sources []Source `json:"sources"`
}

type Timing struct {
	TotalMs    int64 `json:"totalMs"`
	ResolverMs int64 `json:"resolverMs"`
	WebRagMs   int64 `json:"webRagMs"`
	LlmMs      int64 `json:"llmMs"`
}

type Answer struct {
	Mode     string `json:"mode"`
	Grounded bool   `json:"grounded"`
}

type Trace struct {
	TraceVersion string     `json:"traceVersion"`
	RequestID    string     `json:"requestId"`
	Routing      Routing    `json:"routing"`
	Resolver     Resolver   `json:"resolver"`
	Thresholds   Thresholds `json:"thresholds"`
	PromptBlocks []string   `json:"promptBlocks"`
	Provenance   Provenance `json:"provenance"`
	Timing       Timing     `json:"timing"`
	Answer       *Answer    `json:"answer,omitempty"`
}

type Inputs struct {
	Version    string
	RequestID  string
	Resolver   grounding.ResolverResult
	Evaluation threshold.Result
	// NoResults marks the early exit: thresholds are reported failed and
	// carry the resolver notes only.
	NoResults    bool
	Steps        []Step
	Reason       string
	Web          *grounding.WebResult
	PromptBlocks []string
	Timing       Timing
	Answer       *Answer
}

// Assemble is a pure composition of the run's outcomes.
func Assemble(in Inputs) Trace {
	routedVia := in.Resolver.RoutedVia
	if routedVia == "" {
		routedVia = grounding.RoutedViaIdentifier
	}
	mode := in.Resolver.Mode
	if mode == "" {
		mode = grounding.ModeMock
	}

	th := Thresholds{
		CoverageMin:     in.Evaluation.CoverageMin,
		ConfidenceMin:   in.Evaluation.ConfidenceMin,
		Passed:          in.Evaluation.Passed && !in.NoResults,
		WebRagTriggered: in.Web != nil,
		Notes:           joinNotes(in.Evaluation.Notes, in.Resolver.Notes),
	}
	if in.NoResults {
		th.Notes = in.Resolver.Notes
		if th.Notes == "" {
			th.Notes = "resolver: no results"
		}
	}

	blocks := in.PromptBlocks
	if blocks == nil {
		blocks = []string{}
	}
	steps := append([]Step(nil), in.Steps...)

	return Trace{
		TraceVersion: in.Version,
		RequestID:    in.RequestID,
		Routing: Routing{
			ResolverUsed: true,
			WebRagUsed:   in.Web != nil,
			RoutedVia:    routedVia,
			Reason:       in.Reason,
			Steps:        steps,
		},
		Resolver: Resolver{
			Coverage:     in.Resolver.Coverage,
			Confidence:   in.Resolver.Confidence,
			SnippetCount: len(in.Resolver.Snippets),
			Mode:         mode,
			RoutedVia:    routedVia,
		},
		Thresholds:   th,
		PromptBlocks: blocks,
		Provenance:   Provenance{Sources: Sources(in.Resolver, in.Web)},
		Timing:       in.Timing,
		Answer:       in.Answer,
	}
}

// Sources lists resolver snippets first, then web results.
func Sources(res grounding.ResolverResult, web *grounding.WebResult) []Source {
	out := make([]Source, 0, len(res.Snippets))
	for _, s := range res.Snippets {
		out = append(out, Source{Type: SourceResolver, ID: s.ID, Source: s.Source})
	}
	if web != nil {
		for _, r := range web.Results {
			out = append(out, Source{Type: SourceWeb, URL: r.URL, Source: r.Source})
		}
	}
	return out
}

func joinNotes(evaluation, resolver string) string {
	switch {
	case evaluation == "":
		return resolver
	case resolver == "":
		return evaluation
	default:
		return evaluation + "; " + resolver
	}
}
