package grounding

import "strings"

// AnswerMode selects how the final answer is presented and, under the strict
// policy, which capabilities run.
type AnswerMode string

const (
	AnswerAgentNet AnswerMode = "agentnet"
	AnswerRAG      AnswerMode = "rag"
	AnswerModel    AnswerMode = "model"
	AnswerAll      AnswerMode = "all"
)

// NormalizeAnswerMode maps any unrecognised value, including "", to agentnet.
func NormalizeAnswerMode(raw string) AnswerMode {
	switch m := AnswerMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case AnswerAgentNet, AnswerRAG, AnswerModel, AnswerAll:
		return m
	default:
		return AnswerAgentNet
	}
}

// UsesWeb reports whether the mode needs web retrieval.
func (m AnswerMode) UsesWeb() bool {
	return m == AnswerRAG || m == AnswerModel || m == AnswerAll
}

// UsesModel reports whether the mode needs model synthesis.
func (m AnswerMode) UsesModel() bool {
	return m == AnswerModel || m == AnswerAll
}

// Options are the per-run switches supplied by the caller.
type Options struct {
	EnableWebRag   bool
	EnableLlm      bool
	ConversationID string
	AnswerMode     string
}

func (o Options) Mode() AnswerMode {
	return NormalizeAnswerMode(o.AnswerMode)
}
