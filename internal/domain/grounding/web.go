package grounding

// ErrCodeWebUnavailable marks a crawl that failed softly.
const ErrCodeWebUnavailable = "WEB_RAG_UNAVAILABLE"

type WebSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// WebResult carries crawl output. ErrorCode/Error are set on failure without
// failing the run.
type WebResult struct {
	Results   []WebSource
	ErrorCode string
	Error     string
}

// ModelRequest is what the orchestrator hands the model gateway.
type ModelRequest struct {
	Query     string
	Grounding string
	Grounded  bool
	// Prompt, when set, is sent verbatim instead of the built prompt.
	Prompt string
}

// ModelResult always carries human-readable Text; Error is non-empty when the
// upstream failed.
type ModelResult struct {
	Text       string
	Model      string
	TokensUsed int
	Error      string
}
