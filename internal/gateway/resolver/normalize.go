package resolver

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/gateway/payload"
)

const (
	maxSnippetRunes     = 500
	maxSnippetTextRunes = 2000

	coverageBase   = 0.7
	confidenceBase = 0.65
	countStep      = 0.03
)

var (
	capsuleContentName = payload.Path("capsule_json", "agentnet:content", "agentnet:name")
	capsuleContentDesc = payload.Path("capsule_json", "agentnet:content", "agentnet:description")
	capsuleSource      = payload.Path("capsule_json", "agentnet:source")
	capsuleJSONID      = payload.Path("capsule_json", "@id")
)

// saturate derives a score from a capsule count: min(base + count*step, 1), 0 with no capsules.
func saturate(base float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(base+float64(count)*countStep, 1)
}

func scores(doc gjson.Result, count int) (coverage, confidence float64) {
	var ok bool
	if coverage, ok = payload.Float(doc, "coverage", "summary.coverage", "meta.coverage"); !ok {
		coverage = saturate(coverageBase, count)
	}
	if confidence, ok = payload.Float(doc, "confidence", "summary.confidence", "meta.confidence"); !ok {
		confidence = saturate(confidenceBase, count)
	}
	return grounding.Round3(coverage), grounding.Round3(confidence)
}

func normalizeCapsules(doc, node gjson.Result) grounding.ResolverResult {
	capsules := payload.Array(doc, "capsules", "summary.capsules", "data.capsules")
	count := len(capsules)
	if c := payload.Present(doc, "count"); c.Type == gjson.Number {
		count = int(c.Int())
	}
	coverage, confidence := scores(doc, count)

	snippets := make([]grounding.Snippet, 0, len(capsules))
	for i, c := range capsules {
		snippets = append(snippets, capsuleSnippet(c, i, coverage))
	}

	snippetText := payload.String(doc, "snippetText", "text")
	if snippetText == "" {
		snippetText = payload.String(node, "description")
	}
	if snippetText == "" {
		snippetText = joinSnippets(snippets)
	}

	return grounding.ResolverResult{
		Coverage:         coverage,
		Confidence:       confidence,
		Snippets:         snippets,
		Capsules:         rawList(capsules),
		Facts:            rawList(payload.Array(doc, "facts", "data.facts")),
		SnippetText:      snippetText,
		Mode:             grounding.ModeHTTP,
		IdentitySnapshot: identitySnapshot(doc.Get("audit.identity")),
	}
}

func capsuleSnippet(c gjson.Result, i int, coverage float64) grounding.Snippet {
	name := payload.String(c, capsuleContentName)
	text := payload.String(c, "text", "snippet", capsuleContentDesc, capsuleContentName)
	display := truncateRunes(text, maxSnippetRunes)
	if name != "" && text != name {
		display = "[" + name + "] " + display
	}

	id := payload.String(c, "id")
	explicitID := id != ""
	if !explicitID {
		id = "cap-" + strconv.Itoa(i)
	}

	source := payload.String(c, "source", capsuleSource)
	if source == "" {
		source = "resolver"
	}

	score, ok := payload.Float(c, "score")
	if !ok {
		score = coverage
	}

	citation := payload.String(c, "capsuleUri", "uri", "url", capsuleJSONID)
	switch {
	case citation != "":
	case explicitID:
		citation = "capsule:" + id
	default:
		citation = "capsule:unknown"
	}

	return grounding.Snippet{ID: id, Text: display, Source: source, Citation: citation, Score: score}
}

func normalizeQuery(doc gjson.Result) grounding.ResolverResult {
	results := payload.Array(doc, "results", "capsules")
	coverage, confidence := scores(doc, len(results))

	snippets := make([]grounding.Snippet, 0, len(results))
	for i, r := range results {
		id := payload.String(r, "capsuleId", "id")
		explicitID := id != ""
		if !explicitID {
			id = "qr-" + strconv.Itoa(i)
		}
		source := payload.String(r, "source", "capsuleUri", "nodeUri")
		if source == "" {
			source = "resolver"
		}
		score, ok := payload.Float(r, "relevance", "score")
		if !ok {
			score = coverage
		}
		citation := payload.String(r, "capsuleUri", "nodeUri", "uri", "url")
		switch {
		case citation != "":
		case explicitID:
			citation = "capsule:" + id
		default:
			citation = "capsule:unknown"
		}
		snippets = append(snippets, grounding.Snippet{
			ID:       id,
			Text:     truncateRunes(payload.String(r, "snippet", "text", "name"), maxSnippetRunes),
			Source:   source,
			Citation: citation,
			Score:    score,
		})
	}

	var notes string
	if len(results) == 0 {
		notes = "resolver: no query results"
	}

	return grounding.ResolverResult{
		Coverage:    coverage,
		Confidence:  confidence,
		Snippets:    snippets,
		Capsules:    rawList(results),
		SnippetText: joinSnippets(snippets),
		Mode:        grounding.ModeHTTP,
		Notes:       notes,
	}
}

func identitySnapshot(v gjson.Result) *grounding.IdentitySnapshot {
	if !v.IsObject() {
		return nil
	}
	str := func(paths ...string) *string {
		r := payload.Present(v, paths...)
		if r.Type != gjson.String {
			return nil
		}
		s := r.Str
		return &s
	}
	snap := &grounding.IdentitySnapshot{
		RegistrarOwnerSlug: str("registrarOwnerSlug", "registrar_owner_slug"),
		OwnerID:            str("ownerId", "owner_id"),
		LifecycleState:     str("lifecycleState", "lifecycle_state"),
		VerifiedAt:         str("verifiedAt", "verified_at"),
		Source:             str("source"),
	}
	if r := payload.Present(v, "ttlMs", "ttl_ms"); r.Type == gjson.Number {
		n := r.Int()
		snap.TTLMs = &n
	}
	if r := payload.Present(v, "usedCache", "used_cache"); r.IsBool() {
		b := r.Bool()
		snap.UsedCache = &b
	}
	return snap
}

func joinSnippets(snippets []grounding.Snippet) string {
	texts := make([]string, len(snippets))
	for i, s := range snippets {
		texts[i] = s.Text
	}
	return truncateRunes(strings.Join(texts, "\n"), maxSnippetTextRunes)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func rawList(items []gjson.Result) []json.RawMessage {
	if len(items) == 0 {
		return nil
	}
	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = json.RawMessage(it.Raw)
	}
	return out
}
