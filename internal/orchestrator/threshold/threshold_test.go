package threshold

import (
	"strings"
	"testing"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		coverage, confidence float64
		passed               bool
	}{
		{0.8, 0.7, true},
		{0.95, 0.99, true},
		{0.799, 0.9, false},
		{0.9, 0.699, false},
		{0, 0, false},
	}
	for _, tc := range cases {
		res := Evaluate(grounding.ResolverResult{Coverage: tc.coverage, Confidence: tc.confidence})
		if res.Passed != tc.passed {
			t.Fatalf("coverage=%v confidence=%v passed=%v want=%v", tc.coverage, tc.confidence, res.Passed, tc.passed)
		}
		if res.CoverageMin != 0.8 || res.ConfidenceMin != 0.7 {
			t.Fatalf("mins=%v/%v", res.CoverageMin, res.ConfidenceMin)
		}
	}
}

func TestNotesEmbedComparedValues(t *testing.T) {
	res := Evaluate(grounding.ResolverResult{Coverage: 0.45, Confidence: 0.312})
	want := "Resolver below thresholds (coverage=0.45 < 0.8 or confidence=0.312 < 0.7)"
	if res.Notes != want {
		t.Fatalf("notes=%q want=%q", res.Notes, want)
	}

	ok := Evaluate(grounding.ResolverResult{Coverage: 0.9, Confidence: 0.9})
	if ok.Notes != "Resolver met thresholds" {
		t.Fatalf("notes=%q", ok.Notes)
	}
}

func TestEvaluatorOverride(t *testing.T) {
	e := Evaluator{Thresholds: Thresholds{CoverageMin: 0.5, ConfidenceMin: 0.5}}
	res := e.Evaluate(grounding.ResolverResult{Coverage: 0.6, Confidence: 0.55})
	if !res.Passed {
		t.Fatalf("expected pass under relaxed thresholds: %s", res.Notes)
	}
	if strings.Contains(res.Notes, "below") {
		t.Fatalf("notes=%q", res.Notes)
	}
}
