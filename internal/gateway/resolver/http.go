package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/gateway/httpjson"
	"github.com/agentnet/ant-orchestrator/internal/gateway/payload"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

type HTTPConfig struct {
	BaseURL          string
	NodeEndpoint     string
	CapsulesEndpoint string
	QueryEndpoint    string
	APIKey           string
	// OwnerSlug scopes lookups; the conversation id is used when empty.
	OwnerSlug  string
	Timeout    time.Duration
	QueryLimit int
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
	client, err := httpjson.NewWithHTTPClient(httpjson.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, httpClient)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	if cfg.NodeEndpoint == "" {
		cfg.NodeEndpoint = "/v1/resolve/node"
	}
	if cfg.CapsulesEndpoint == "" {
		cfg.CapsulesEndpoint = "/v1/resolve/capsules"
	}
	if cfg.QueryEndpoint == "" {
		cfg.QueryEndpoint = "/v1/resolve/query"
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = 20
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTP{cfg: cfg, client: client, log: log.With("service", "ResolverGateway")}, nil
}

func (h *HTTP) Resolve(ctx context.Context, query string, rc ResolveContext) grounding.ResolverResult {
	owner := h.cfg.OwnerSlug
	if owner == "" {
		owner = rc.ConversationID
	}
	if IsStructuredIdentifier(query) {
		return h.resolveByIdentifier(ctx, query, owner)
	}
	return h.resolveByQuery(ctx, query, owner)
}

func (h *HTTP) resolveByIdentifier(ctx context.Context, query, owner string) grounding.ResolverResult {
	const via = grounding.RoutedViaIdentifier

	doc, err := h.post(ctx, h.cfg.NodeEndpoint, map[string]any{"owner_slug": owner, "identifier": query})
	if err != nil {
		return h.fail(via, "node resolve: "+h.describe(err))
	}
	if okFalse(doc) {
		return h.fail(via, fmt.Sprintf("node resolve ok:false (%s)", envelopeMessage(doc)))
	}

	node := doc.Get("node")
	if doc.Get("found").Type == gjson.False || !node.IsObject() {
		return grounding.ResolverResult{
			Mode:      grounding.ModeHTTP,
			RoutedVia: via,
			Notes:     "resolver: node not found",
		}
	}

	nodeID := payload.Present(node, "nodeId", "node_id", "id")
	if nodeID.String() == "" {
		return h.fail(via, "node resolve: nodeId missing from response")
	}

	capDoc, err := h.post(ctx, h.cfg.CapsulesEndpoint, map[string]any{"nodeId": json.RawMessage(nodeID.Raw)})
	if err != nil {
		return h.fail(via, "capsules fetch: "+h.describe(err))
	}
	if okFalse(capDoc) {
		return h.fail(via, fmt.Sprintf("capsules ok:false (%s)", envelopeMessage(capDoc)))
	}

	res := normalizeCapsules(capDoc, node)
	res.RoutedVia = via
	return res
}

func (h *HTTP) resolveByQuery(ctx context.Context, query, owner string) grounding.ResolverResult {
	const via = grounding.RoutedViaQuery

	doc, err := h.post(ctx, h.cfg.QueryEndpoint, map[string]any{"owner_slug": owner, "q": query, "limit": h.cfg.QueryLimit})
	if err != nil {
		return h.fail(via, "query resolve: "+h.describe(err))
	}
	if okFalse(doc) {
		return h.fail(via, fmt.Sprintf("query resolve ok:false (%s)", envelopeMessage(doc)))
	}
	res := normalizeQuery(doc)
	res.RoutedVia = via
	return res
}

func (h *HTTP) post(ctx context.Context, path string, body any) (gjson.Result, error) {
	raw, err := h.client.Post(ctx, path, body)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(raw), nil
}

func (h *HTTP) fail(via, reason string) grounding.ResolverResult {
	h.log.Warn("resolver call failed", "routed_via", via, "reason", reason)
	return grounding.ResolverResult{
		Mode:      grounding.ModeHTTP,
		RoutedVia: via,
		Notes:     "resolver error: " + reason,
	}
}

// describe renders a transport error as "<status>[: msg]", "timed out (Nms)" or "unreachable (err)".
func (h *HTTP) describe(err error) string {
	var he *httpjson.HTTPError
	switch {
	case errors.As(err, &he):
		if msg := he.Message(); msg != "" {
			return strconv.Itoa(he.StatusCode) + ": " + msg
		}
		return strconv.Itoa(he.StatusCode)
	case httpjson.IsTimeout(err):
		return fmt.Sprintf("timed out (%dms)", h.client.Timeout().Milliseconds())
	default:
		return fmt.Sprintf("unreachable (%s)", unwrapMessage(err))
	}
}

func unwrapMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}

func okFalse(doc gjson.Result) bool {
	return doc.Get("ok").Type == gjson.False
}

func envelopeMessage(doc gjson.Result) string {
	if msg := payload.String(doc, "error.message", "error.code"); msg != "" {
		return msg
	}
	return "unknown error"
}
