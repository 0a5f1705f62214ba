package orchestrator

import (
	"strings"
	"testing"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/threshold"
)

var strong = grounding.ResolverResult{
	Coverage:   0.9,
	Confidence: 0.9,
	Snippets:   []grounding.Snippet{{ID: "c1", Text: "Acme makes widgets", Source: "resolver"}},
	Mode:       grounding.ModeHTTP,
}

var weak = grounding.ResolverResult{
	Coverage:   0.4,
	Confidence: 0.35,
	Snippets:   []grounding.Snippet{{ID: "c1", Text: "thin", Source: "resolver"}},
	Mode:       grounding.ModeMock,
}

func strict() StrictPolicy { return StrictPolicy{Evaluator: threshold.Evaluator{Thresholds: threshold.Default}} }
func gated() ThresholdPolicy {
	return ThresholdPolicy{Evaluator: threshold.Evaluator{Thresholds: threshold.Default}}
}

func TestStrictPolicyByMode(t *testing.T) {
	cases := []struct {
		mode     string
		web, llm bool
	}{
		{"", false, false},
		{"agentnet", false, false},
		{"rag", true, false},
		{"model", true, true},
		{"all", true, true},
		{"bogus", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			// Threshold outcome must not matter.
			for _, res := range []grounding.ResolverResult{strong, weak} {
				d := strict().Decide(res, grounding.Options{AnswerMode: tc.mode, EnableWebRag: true, EnableLlm: true})
				if d.Web != tc.web || d.LLM != tc.llm {
					t.Fatalf("web=%v llm=%v", d.Web, d.LLM)
				}
				if !d.Strict || d.Version != "0.2" || d.NoResults {
					t.Fatalf("decision=%+v", d)
				}
				if len(d.Steps) != 3 || d.Steps[0].Name != "resolver" || d.Steps[1].Name != "webRag" || d.Steps[2].Name != "llm" {
					t.Fatalf("steps=%+v", d.Steps)
				}
				if d.Steps[1].Executed != tc.web || d.Steps[2].Executed != tc.llm {
					t.Fatalf("steps=%+v", d.Steps)
				}
			}
		})
	}
}

func TestStrictPolicyReasons(t *testing.T) {
	d := strict().Decide(weak, grounding.Options{AnswerMode: "rag"})
	if d.Reason != "Strict answer mode: rag" {
		t.Fatalf("reason=%q", d.Reason)
	}
	if d.Steps[0].Reason != "Ground-First: always executes" ||
		d.Steps[1].Reason != "answerMode=rag requires web retrieval" ||
		d.Steps[2].Reason != "answerMode=rag does not use model synthesis" {
		t.Fatalf("steps=%+v", d.Steps)
	}
	if d.Evaluation.Passed {
		t.Fatalf("evaluation must still be reported")
	}
}

func TestStrictPrefetch(t *testing.T) {
	if strict().PrefetchWeb(grounding.Options{AnswerMode: "agentnet"}) {
		t.Fatalf("agentnet must not prefetch")
	}
	if !strict().PrefetchWeb(grounding.Options{AnswerMode: "all"}) {
		t.Fatalf("all must prefetch")
	}
	if gated().PrefetchWeb(grounding.Options{EnableWebRag: true}) {
		t.Fatalf("threshold policy cannot prefetch")
	}
}

func TestThresholdPolicyPassed(t *testing.T) {
	d := gated().Decide(strong, grounding.Options{EnableWebRag: true, EnableLlm: true})
	if d.Web || d.LLM || d.Strict || d.Version != "0.1" {
		t.Fatalf("decision=%+v", d)
	}
	for _, s := range d.Steps[1:] {
		if s.Executed || s.Reason != "Resolver met thresholds" {
			t.Fatalf("step=%+v", s)
		}
	}
	if d.Reason != "Resolver met thresholds" {
		t.Fatalf("reason=%q", d.Reason)
	}
}

func TestThresholdPolicyBelow(t *testing.T) {
	d := gated().Decide(weak, grounding.Options{EnableWebRag: true})
	if !d.Web || d.LLM {
		t.Fatalf("decision=%+v", d)
	}
	if d.Steps[1].Reason != "Resolver below thresholds" || d.Steps[2].Reason != "Disabled by options" {
		t.Fatalf("steps=%+v", d.Steps)
	}
	if !strings.Contains(d.Reason, "coverage=0.4") || !strings.Contains(d.Reason, "confidence=0.35") {
		t.Fatalf("reason must embed compared values: %q", d.Reason)
	}
}

func TestThresholdPolicyNoResults(t *testing.T) {
	res := grounding.ResolverResult{Mode: grounding.ModeHTTP, RoutedVia: grounding.RoutedViaQuery, Notes: "resolver: no query results"}
	d := gated().Decide(res, grounding.Options{EnableWebRag: true, EnableLlm: true})
	if !d.NoResults || d.Web || d.LLM {
		t.Fatalf("decision=%+v", d)
	}
	want := []string{"Ground-First (query)", "Resolver returned no results", "Resolver returned no results"}
	for i, s := range d.Steps {
		if s.Reason != want[i] || s.Executed != (i == 0) {
			t.Fatalf("step %d=%+v", i, s)
		}
	}

	// An upstream failure is not a no-results exit.
	failed := grounding.ResolverResult{Mode: grounding.ModeHTTP, Notes: "resolver error: query resolve: 502"}
	if gated().Decide(failed, grounding.Options{}).NoResults {
		t.Fatalf("errors must not take the no-results path")
	}
}

func TestNoResultsMessage(t *testing.T) {
	if got := noResultsMessage("widgets", "query", ""); got != `No matching capsules found for "widgets" under owner "agentnet".` {
		t.Fatalf("got=%q", got)
	}
	want := `No node found for identifier "acme.co" under owner "acme". Use a known AgentNet identifier.`
	if got := noResultsMessage("acme.co", "", "acme"); got != want {
		t.Fatalf("got=%q", got)
	}
}

func TestNewPolicy(t *testing.T) {
	cfg := &config.Config{}
	cfg.Orchestrator.CoverageMin, cfg.Orchestrator.ConfidenceMin = 0.5, 0.5

	cfg.Orchestrator.Policy = config.PolicyThreshold
	p, err := NewPolicy(cfg)
	if err != nil || p.Name() != "threshold" {
		t.Fatalf("p=%v err=%v", p, err)
	}
	mid := grounding.ResolverResult{Coverage: 0.6, Confidence: 0.6, Snippets: weak.Snippets}
	if !p.Decide(mid, grounding.Options{}).Evaluation.Passed {
		t.Fatalf("configured thresholds not applied")
	}

	cfg.Orchestrator.Policy = config.PolicyStrict
	if p, err = NewPolicy(cfg); err != nil || p.Name() != "strict" {
		t.Fatalf("p=%v err=%v", p, err)
	}

	cfg.Orchestrator.Policy = "random"
	if _, err := NewPolicy(cfg); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
