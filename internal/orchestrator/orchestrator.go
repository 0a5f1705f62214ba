// Package orchestrator runs the Ground-First flow: resolver first, then web
// and model as the routing policy decides, then rendering and trace assembly.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agentnet/ant-orchestrator/internal/audit"
	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/gateway/model"
	"github.com/agentnet/ant-orchestrator/internal/gateway/resolver"
	"github.com/agentnet/ant-orchestrator/internal/gateway/web"
	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/prompt"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/render"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/threshold"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator/trace"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// Recorder receives finished runs. Submit must not block.
type Recorder interface {
	Submit(rec audit.Record)
}

type Deps struct {
	Resolver resolver.Gateway
	Web      web.Gateway
	Model    model.Gateway
	Policy   Policy
	Recorder Recorder
	Metrics  *observability.Metrics
	Log      *logger.Logger

	// ParallelWeb overlaps the crawl with the resolver when the policy can
	// decide web from the options alone.
	ParallelWeb bool
	OwnerSlug   string

	NewID func() string
	Now   func() time.Time
}

type Orchestrator struct {
	deps Deps
	log  *logger.Logger
}

type Result struct {
	Response string      `json:"response"`
	Trace    trace.Trace `json:"trace"`
}

func New(deps Deps) *Orchestrator {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Policy == nil {
		deps.Policy = StrictPolicy{Evaluator: threshold.Evaluator{Thresholds: threshold.Default}}
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if strings.TrimSpace(deps.OwnerSlug) == "" {
		deps.OwnerSlug = "agentnet"
	}
	return &Orchestrator{deps: deps, log: deps.Log.With("service", "Orchestrator")}
}

// run holds the mutable state of one Run call.
type run struct {
	query string
	opts  grounding.Options

	res        grounding.ResolverResult
	web        *grounding.WebResult
	modelOut   *grounding.ModelResult
	resolverMs int64
	webMs      int64
	llmMs      int64
}

// Run never fails: upstream problems surface as notes in the result and trace.
func (o *Orchestrator) Run(ctx context.Context, query string, opts grounding.Options) Result {
	start := o.deps.Now()
	requestID := o.deps.NewID()
	mode := opts.Mode()

	ctx, span := observability.Tracer().Start(ctx, "orchestrator.run", oteltrace.WithAttributes(
		attribute.String("request_id", requestID),
		attribute.String("policy", o.deps.Policy.Name()),
		attribute.String("answer_mode", string(mode)),
	))
	defer span.End()

	r := &run{query: query, opts: opts}
	if o.deps.ParallelWeb && o.deps.Policy.PrefetchWeb(opts) {
		var g errgroup.Group
		g.Go(func() error { o.resolve(ctx, r); return nil })
		g.Go(func() error { o.crawl(ctx, r); return nil })
		_ = g.Wait()
	} else {
		o.resolve(ctx, r)
	}

	d := o.deps.Policy.Decide(r.res, opts)

	var response string
	var blocks []string
	var answer *trace.Answer
	if !d.Web {
		r.web, r.webMs = nil, 0
	}
	switch {
	case d.NoResults:
		response = noResultsMessage(query, r.res.RoutedVia, o.deps.OwnerSlug)
	default:
		if d.Web && r.web == nil {
			o.crawl(ctx, r)
		}
		if d.LLM {
			o.generate(ctx, r, d.Strict)
		}
		blocks = prompt.Blocks(r.web)
		response = o.respond(r, d)
		if d.Strict {
			answer = &trace.Answer{Mode: string(mode), Grounded: prompt.Grounded(r.res, r.web)}
		}
	}

	total := o.deps.Now().Sub(start)
	tr := trace.Assemble(trace.Inputs{
		Version:      d.Version,
		RequestID:    requestID,
		Resolver:     r.res,
		Evaluation:   d.Evaluation,
		NoResults:    d.NoResults,
		Steps:        d.Steps,
		Reason:       d.Reason,
		Web:          r.web,
		PromptBlocks: blocks,
		Timing: trace.Timing{
			TotalMs:    total.Milliseconds(),
			ResolverMs: r.resolverMs,
			WebRagMs:   r.webMs,
			LlmMs:      r.llmMs,
		},
		Answer: answer,
	})

	o.deps.Metrics.ObserveRun(o.deps.Policy.Name(), string(mode), prompt.Grounded(r.res, r.web), total)
	span.SetAttributes(
		attribute.Bool("no_results", d.NoResults),
		attribute.Bool("web_used", r.web != nil),
		attribute.Bool("llm_used", r.modelOut != nil),
	)
	o.log.Debug("run complete",
		"request_id", requestID,
		"policy", o.deps.Policy.Name(),
		"answer_mode", mode,
		"routed_via", tr.Routing.RoutedVia,
		"total_ms", tr.Timing.TotalMs,
	)

	if o.deps.Recorder != nil {
		o.deps.Recorder.Submit(audit.Record{
			RequestID:        requestID,
			ConversationID:   opts.ConversationID,
			Query:            query,
			Response:         response,
			Trace:            tr,
			IdentitySnapshot: r.res.IdentitySnapshot,
		})
	}
	return Result{Response: response, Trace: tr}
}

func (o *Orchestrator) resolve(ctx context.Context, r *run) {
	ctx, span := observability.Tracer().Start(ctx, "gateway.resolver")
	defer span.End()

	t0 := o.deps.Now()
	r.res = o.deps.Resolver.Resolve(ctx, r.query, resolver.ResolveContext{ConversationID: r.opts.ConversationID})
	d := o.deps.Now().Sub(t0)
	r.resolverMs = d.Milliseconds()

	failed := strings.HasPrefix(r.res.Notes, "resolver error:")
	if failed {
		span.SetStatus(codes.Error, r.res.Notes)
	}
	span.SetAttributes(
		attribute.String("routed_via", r.res.RoutedVia),
		attribute.Int("snippets", len(r.res.Snippets)),
	)
	o.deps.Metrics.ObserveGateway("resolver", failed, d)
}

func (o *Orchestrator) crawl(ctx context.Context, r *run) {
	if o.deps.Web == nil {
		r.web = &grounding.WebResult{ErrorCode: grounding.ErrCodeWebUnavailable, Error: "web gateway not configured"}
		return
	}
	ctx, span := observability.Tracer().Start(ctx, "gateway.web")
	defer span.End()

	t0 := o.deps.Now()
	out := o.deps.Web.Crawl(ctx, r.query)
	d := o.deps.Now().Sub(t0)
	r.web = &out
	r.webMs = d.Milliseconds()

	failed := out.ErrorCode != ""
	if failed {
		span.SetStatus(codes.Error, out.Error)
	}
	span.SetAttributes(attribute.Int("results", len(out.Results)))
	o.deps.Metrics.ObserveGateway("web", failed, d)
}

func (o *Orchestrator) generate(ctx context.Context, r *run, strict bool) {
	if o.deps.Model == nil {
		r.modelOut = &grounding.ModelResult{Text: model.UnavailableText, Error: "model gateway not configured"}
		return
	}
	ctx, span := observability.Tracer().Start(ctx, "gateway.model")
	defer span.End()

	req := grounding.ModelRequest{
		Query:     r.query,
		Grounding: prompt.Grounding(r.res, r.web),
		Grounded:  prompt.Grounded(r.res, r.web),
	}
	if !strict {
		req.Prompt = prompt.Compose(r.query, r.res, r.web)
	}

	t0 := o.deps.Now()
	out := o.deps.Model.Generate(ctx, req)
	d := o.deps.Now().Sub(t0)
	r.modelOut = &out
	r.llmMs = d.Milliseconds()

	failed := out.Error != ""
	if failed {
		span.SetStatus(codes.Error, out.Error)
	}
	span.SetAttributes(attribute.String("model", out.Model), attribute.Int("tokens", out.TokensUsed))
	o.deps.Metrics.ObserveGateway("model", failed, d)
}

func (o *Orchestrator) respond(r *run, d Decision) string {
	if !d.Strict {
		text := ""
		if r.modelOut != nil {
			text = r.modelOut.Text
		}
		return render.Plain(text, r.modelOut != nil, r.res.Snippets)
	}

	in := render.Inputs{
		Query:       r.query,
		Snippets:    r.res.Snippets,
		SourcesUsed: prompt.SourcesUsed(r.res, r.web),
		Grounded:    prompt.Grounded(r.res, r.web),
	}
	if r.web != nil {
		in.Web = r.web.Results
	}
	if r.modelOut != nil {
		in.ModelText = r.modelOut.Text
	}
	return render.ByMode(r.opts.Mode(), in)
}
