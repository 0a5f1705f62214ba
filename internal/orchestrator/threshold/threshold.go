// Package threshold decides whether a resolver result is good enough to stand
// on its own.
package threshold

import (
	"fmt"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
)

type Thresholds struct {
	CoverageMin   float64 `json:"coverageMin"`
	ConfidenceMin float64 `json:"confidenceMin"`
}

var Default = Thresholds{CoverageMin: 0.8, ConfidenceMin: 0.7}

type Result struct {
	Passed        bool
	CoverageMin   float64
	ConfidenceMin float64
	Notes         string
}

type Evaluator struct {
	Thresholds Thresholds
}

// Evaluate checks res against the default thresholds.
func Evaluate(res grounding.ResolverResult) Result {
	return Evaluator{Thresholds: Default}.Evaluate(res)
}

func (e Evaluator) Evaluate(res grounding.ResolverResult) Result {
	t := e.Thresholds
	passed := res.Coverage >= t.CoverageMin && res.Confidence >= t.ConfidenceMin

	notes := "Resolver met thresholds"
	if !passed {
		notes = fmt.Sprintf("Resolver below thresholds (coverage=%g < %g or confidence=%g < %g)",
			res.Coverage, t.CoverageMin, res.Confidence, t.ConfidenceMin)
	}
	return Result{
		Passed:        passed,
		CoverageMin:   t.CoverageMin,
		ConfidenceMin: t.ConfidenceMin,
		Notes:         notes,
	}
}
