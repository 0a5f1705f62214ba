// Package prompt assembles the grounding handed to the model and the prompt
// block list recorded in the trace.
package prompt

import (
	"strings"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
)

const SystemBlock = "You are a helpful assistant. Answer using ONLY the provided context. If the context is insufficient, say so."

const (
	BlockSystem   = "system"
	BlockResolver = "resolverContext"
	BlockWeb      = "webContext"
	BlockQuery    = "userQuery"
)

// Blocks lists the prompt sections a run would include. The web block is
// present iff a web result exists, whether or not it holds sources.
func Blocks(web *grounding.WebResult) []string {
	blocks := []string{BlockSystem, BlockResolver}
	if web != nil {
		blocks = append(blocks, BlockWeb)
	}
	return append(blocks, BlockQuery)
}

// Grounding renders resolver snippets then web sources as citation bullets.
func Grounding(res grounding.ResolverResult, web *grounding.WebResult) string {
	var lines []string
	for _, s := range res.Snippets {
		lines = append(lines, bullet(s.Text, s.Citation))
	}
	if web != nil {
		for _, r := range web.Results {
			lines = append(lines, bullet(firstNonEmpty(r.Snippet, r.Title), r.URL))
		}
	}
	return strings.Join(lines, "\n")
}

// Grounded reports whether any resolver or web source contributed.
func Grounded(res grounding.ResolverResult, web *grounding.WebResult) bool {
	n := len(res.Snippets)
	if web != nil {
		n += len(web.Results)
	}
	return n > 0
}

// SourcesUsed lists the citations backing a model answer, resolver first.
func SourcesUsed(res grounding.ResolverResult, web *grounding.WebResult) []string {
	var out []string
	for _, s := range res.Snippets {
		if s.Citation != "" {
			out = append(out, s.Citation)
		}
	}
	if web != nil {
		for _, r := range web.Results {
			out = append(out, r.URL)
		}
	}
	return out
}

// Compose builds the full prompt text sent to the model by the threshold policy.
func Compose(query string, res grounding.ResolverResult, web *grounding.WebResult) string {
	parts := []string{SystemBlock, resolverContext(res)}
	if web != nil {
		parts = append(parts, webContext(*web))
	}
	parts = append(parts, "User query: "+query)
	return strings.Join(parts, "\n\n")
}

func resolverContext(res grounding.ResolverResult) string {
	lines := make([]string, len(res.Snippets))
	for i, s := range res.Snippets {
		lines[i] = "- [" + s.Source + "] " + s.Text
	}
	return "Resolver context:\n" + strings.Join(lines, "\n")
}

func webContext(web grounding.WebResult) string {
	lines := make([]string, len(web.Results))
	for i, r := range web.Results {
		lines[i] = "- [" + r.Source + "] " + r.Snippet + " (" + r.URL + ")"
	}
	return "Web context:\n" + strings.Join(lines, "\n")
}

func bullet(text, ref string) string {
	if ref == "" {
		return "- " + text
	}
	return "- " + text + " [" + ref + "]"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
