package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/gateway/httpjson"
	"github.com/agentnet/ant-orchestrator/internal/gateway/payload"
	"github.com/agentnet/ant-orchestrator/internal/gateway/simulate"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const (
	responsesPath = "/responses"

	// UnavailableText is returned as the answer when the upstream call fails.
	UnavailableText = "(model unavailable)"

	mockText  = "This is a mock assistant response synthesised from the provided context."
	mockModel = "mock-llm-v1"
)

// Gateway synthesises an answer. It never fails; upstream problems set ModelResult.Error.
type Gateway interface {
	Generate(ctx context.Context, req grounding.ModelRequest) grounding.ModelResult
}

func New(cfg *config.Config, log *logger.Logger) (Gateway, error) {
	switch cfg.Model.Mode {
	case config.ModeMock:
		return NewMock(cfg.Model.MockLatency, nil), nil
	case config.ModeHTTP:
		return NewHTTP(HTTPConfig{
			BaseURL:     cfg.Model.BaseURL,
			APIKey:      cfg.Model.APIKey,
			Model:       cfg.Model.Model,
			Temperature: cfg.Model.Temperature,
			Timeout:     cfg.Model.Timeout.Duration,
		}, log)
	default:
		return nil, fmt.Errorf("unknown model mode %q", cfg.Model.Mode)
	}
}

// BuildPrompt embeds the grounding (or an explicit "(none)") and the grounded
// flag so the model hedges when nothing backs the answer.
func BuildPrompt(req grounding.ModelRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	var b strings.Builder
	b.WriteString("You are the AgentNet assistant. Answer the user query using only the grounding below.\n")
	if req.Grounded {
		b.WriteString("Grounded: yes\n")
	} else {
		b.WriteString("Grounded: no\n")
		b.WriteString("No AgentNet or web sources were found. Say so plainly and hedge your answer; do not present it as verified.\n")
	}
	b.WriteString("\nGrounding:\n")
	if g := strings.TrimSpace(req.Grounding); g != "" {
		b.WriteString(g)
	} else {
		b.WriteString("(none)")
	}
	b.WriteString("\n\nUser query: ")
	b.WriteString(req.Query)
	return b.String()
}

type Mock struct {
	latency bool
	rnd     simulate.Rand
}

func NewMock(latency bool, rnd simulate.Rand) *Mock {
	return &Mock{latency: latency, rnd: simulate.Source(rnd)}
}

func (m *Mock) Generate(ctx context.Context, _ grounding.ModelRequest) grounding.ModelResult {
	if m.latency {
		simulate.Latency(ctx, m.rnd, 100, 80)
	}
	return grounding.ModelResult{Text: mockText, Model: mockModel, TokensUsed: 64}
}

type HTTPConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type HTTP struct {
	cfg    HTTPConfig
	client *httpjson.Client
	log    *logger.Logger
}

func NewHTTP(cfg HTTPConfig, log *logger.Logger) (*HTTP, error) {
	return NewHTTPWithClient(cfg, log, nil)
}

// NewHTTPWithClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewHTTPWithClient(cfg HTTPConfig, log *logger.Logger, httpClient *http.Client) (*HTTP, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model: model name required")
	}
	client, err := httpjson.NewWithHTTPClient(httpjson.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, httpClient)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTP{cfg: cfg, client: client, log: log.With("service", "ModelGateway")}, nil
}

func (h *HTTP) Generate(ctx context.Context, req grounding.ModelRequest) grounding.ModelResult {
	raw, err := h.client.Post(ctx, responsesPath, map[string]any{
		"model":       h.cfg.Model,
		"input":       BuildPrompt(req),
		"temperature": h.cfg.Temperature,
	})
	if err != nil {
		msg := describe(err)
		h.log.Warn("model call failed", "model", h.cfg.Model, "error", msg)
		return grounding.ModelResult{Text: UnavailableText, Model: h.cfg.Model, Error: msg}
	}

	doc := gjson.ParseBytes(raw)
	model := payload.String(doc, "model")
	if model == "" {
		model = h.cfg.Model
	}
	return grounding.ModelResult{
		Text:       outputText(doc),
		Model:      model,
		TokensUsed: int(doc.Get("usage.total_tokens").Int()),
	}
}

// outputText prefers the flattened output_text and falls back to joining
// every output[].content[].text part.
func outputText(doc gjson.Result) string {
	if s := payload.String(doc, "output_text"); s != "" {
		return s
	}
	var b strings.Builder
	for _, item := range doc.Get("output").Array() {
		for _, part := range item.Get("content").Array() {
			b.WriteString(payload.String(part, "text"))
		}
	}
	return b.String()
}

func describe(err error) string {
	var he *httpjson.HTTPError
	switch {
	case errors.As(err, &he):
		if msg := he.Message(); msg != "" {
			return "HTTP " + strconv.Itoa(he.StatusCode) + ": " + msg
		}
		return "HTTP " + strconv.Itoa(he.StatusCode)
	case httpjson.IsTimeout(err):
		return "timeout"
	default:
		return err.Error()
	}
}
