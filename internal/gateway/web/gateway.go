package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/gateway/httpjson"
	"github.com/agentnet/ant-orchestrator/internal/gateway/payload"
	"github.com/agentnet/ant-orchestrator/internal/gateway/simulate"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const crawlPath = "/v1/web/crawl"

// Gateway retrieves web sources for a query. Failures come back as a
// WebResult carrying ErrorCode, never as an error.
type Gateway interface {
	Crawl(ctx context.Context, query string) grounding.WebResult
}

func New(cfg *config.Config, log *logger.Logger) (Gateway, error) {
	switch cfg.Web.Mode {
	case config.ModeMock:
		return NewMock(cfg.Web.MockLatency, nil), nil
	case config.ModeHTTP:
		return NewHTTP(cfg.Web.BaseURL, cfg.Web.Timeout.Duration, cfg.Web.Limit, log)
	default:
		return nil, fmt.Errorf("unknown web mode %q", cfg.Web.Mode)
	}
}

type Mock struct {
	latency bool
	rnd     simulate.Rand
}

func NewMock(latency bool, rnd simulate.Rand) *Mock {
	return &Mock{latency: latency, rnd: simulate.Source(rnd)}
}

func (m *Mock) Crawl(ctx context.Context, query string) grounding.WebResult {
	if m.latency {
		simulate.Latency(ctx, m.rnd, 80, 60)
	}
	return grounding.WebResult{
		Results: []grounding.WebSource{{
			Title:   `Web result for: "` + query + `"`,
			URL:     "https://example.com/mock",
			Snippet: "This is a mock web-RAG snippet.",
			Source:  "web",
		}},
	}
}

type HTTP struct {
	client *httpjson.Client
	limit  int
	log    *logger.Logger
}

func NewHTTP(baseURL string, timeout time.Duration, limit int, log *logger.Logger) (*HTTP, error) {
	return NewHTTPWithClient(baseURL, timeout, limit, log, nil)
}

// NewHTTPWithClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewHTTPWithClient(baseURL string, timeout time.Duration, limit int, log *logger.Logger, httpClient *http.Client) (*HTTP, error) {
	client, err := httpjson.NewWithHTTPClient(httpjson.Options{BaseURL: baseURL, Timeout: timeout}, httpClient)
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	if limit <= 0 {
		limit = 5
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTP{client: client, limit: limit, log: log.With("service", "WebGateway")}, nil
}

func (h *HTTP) Crawl(ctx context.Context, query string) grounding.WebResult {
	raw, err := h.client.Post(ctx, crawlPath, map[string]any{"q": query, "limit": h.limit})
	if err != nil {
		msg := describe(err)
		h.log.Warn("web crawl failed", "error", msg)
		return grounding.WebResult{ErrorCode: grounding.ErrCodeWebUnavailable, Error: msg}
	}

	var out grounding.WebResult
	for _, s := range payload.Array(gjson.ParseBytes(raw), "sources") {
		url := payload.String(s, "url")
		if url == "" {
			continue
		}
		out.Results = append(out.Results, grounding.WebSource{
			Title:   payload.String(s, "title"),
			URL:     url,
			Snippet: payload.String(s, "snippet", "text"),
			Source:  "web",
		})
	}
	return out
}

func describe(err error) string {
	var he *httpjson.HTTPError
	switch {
	case errors.As(err, &he):
		return "HTTP " + strconv.Itoa(he.StatusCode)
	case httpjson.IsTimeout(err):
		return "timeout"
	default:
		if inner := errors.Unwrap(err); inner != nil {
			return inner.Error()
		}
		return err.Error()
	}
}
