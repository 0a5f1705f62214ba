package grounding

import (
	"encoding/json"
	"math"
)

const (
	ModeMock = "mock"
	ModeHTTP = "http"

	RoutedViaIdentifier = "identifier"
	RoutedViaQuery      = "query"
)

// Snippet is one normalised capsule excerpt.
type Snippet struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	Citation string  `json:"citation"`
	Score    float64 `json:"score"`
}

// IdentitySnapshot is owner/lifecycle metadata reported by identity-backed resolution.
type IdentitySnapshot struct {
	RegistrarOwnerSlug *string `json:"registrarOwnerSlug"`
	OwnerID            *string `json:"ownerId"`
	LifecycleState     *string `json:"lifecycleState"`
	VerifiedAt         *string `json:"verifiedAt"`
	Source             *string `json:"source"`
	TTLMs              *int64  `json:"ttlMs"`
	UsedCache          *bool   `json:"usedCache"`
}

// ResolverResult is the fixed internal shape every resolver mode produces.
type ResolverResult struct {
	Coverage         float64
	Confidence       float64
	Snippets         []Snippet
	Capsules         []json.RawMessage
	Facts            []json.RawMessage
	SnippetText      string
	Mode             string
	RoutedVia        string
	Notes            string
	IdentitySnapshot *IdentitySnapshot
}

// NoGrounding reports the canonical "nothing found" state, whatever caused it.
func (r ResolverResult) NoGrounding() bool {
	return r.Coverage == 0 && len(r.Snippets) == 0
}

// Round3 rounds to three decimals, the precision scores are reported at.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
