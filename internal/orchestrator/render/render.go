// Package render turns resolver, web and model results into the answer text
// for each answer mode. Everything here is pure.
package render

import (
	"strings"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
)

const (
	headingAgentNet = "=== AgentNet (Deterministic / Capsules only) ==="
	headingWeb      = "=== Web RAG (Web crawl only) ==="
	headingModel    = "=== Model Synthesis (LLM — grounded if sources available) ==="
	ungroundedLine  = "UNGROUNDED: no AgentNet or Web sources were available."
	noneLine        = "- none"
)

type Inputs struct {
	Query     string
	Snippets  []grounding.Snippet
	Web       []grounding.WebSource
	ModelText string
	// SourcesUsed is the grounding summary listed under the model answer.
	SourcesUsed []string
	Grounded    bool
}

func AgentNet(in Inputs) string {
	body := `No AgentNet capsule snippets found for "` + in.Query + `".`
	if len(in.Snippets) > 0 {
		lines := make([]string, len(in.Snippets))
		for i, s := range in.Snippets {
			lines[i] = "- " + s.Text
		}
		body = strings.Join(lines, "\n")
	}

	var sources []string
	for _, s := range in.Snippets {
		if s.Citation != "" {
			sources = append(sources, s.Citation)
		}
	}
	return strings.Join([]string{headingAgentNet, body, "", "Sources:", bullets(sources)}, "\n")
}

func RAG(in Inputs) string {
	if len(in.Web) == 0 {
		return strings.Join([]string{headingWeb, "No web sources collected (crawl returned none).", "", "Sources:", noneLine}, "\n")
	}
	lines := make([]string, len(in.Web))
	urls := make([]string, len(in.Web))
	for i, s := range in.Web {
		lines[i] = "- " + firstNonEmpty(s.Snippet, s.Title, s.URL)
		urls[i] = s.URL
	}
	return strings.Join([]string{headingWeb, strings.Join(lines, "\n"), "", "Sources:", bullets(urls)}, "\n")
}

func Model(in Inputs) string {
	heading := headingModel
	if !in.Grounded {
		heading += "\n" + ungroundedLine
	}
	text := in.ModelText
	if text == "" {
		text = "LLM returned no text."
	}
	return strings.Join([]string{heading, "", text, "", "Grounding used:", bullets(in.SourcesUsed)}, "\n")
}

// All is the agentnet, rag and model renderings separated by blank lines.
func All(in Inputs) string {
	return strings.Join([]string{AgentNet(in), RAG(in), Model(in)}, "\n\n")
}

func ByMode(mode grounding.AnswerMode, in Inputs) string {
	switch mode {
	case grounding.AnswerRAG:
		return RAG(in)
	case grounding.AnswerModel:
		return Model(in)
	case grounding.AnswerAll:
		return All(in)
	default:
		return AgentNet(in)
	}
}

// Plain is the model text when there is one, else the snippet texts one per line.
func Plain(modelText string, modelRan bool, snippets []grounding.Snippet) string {
	if modelRan {
		return modelText
	}
	texts := make([]string, len(snippets))
	for i, s := range snippets {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}

func bullets(items []string) string {
	if len(items) == 0 {
		return noneLine
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
