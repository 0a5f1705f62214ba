package model

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestBuildPromptGrounded(t *testing.T) {
	p := BuildPrompt(grounding.ModelRequest{Query: "what is acme", Grounding: "- Acme makes widgets [capsule:1]", Grounded: true})
	if !strings.Contains(p, "Grounded: yes") || strings.Contains(p, "hedge") {
		t.Fatalf("prompt=%q", p)
	}
	if !strings.Contains(p, "- Acme makes widgets [capsule:1]") || !strings.HasSuffix(p, "User query: what is acme") {
		t.Fatalf("prompt=%q", p)
	}
}

func TestBuildPromptUngrounded(t *testing.T) {
	p := BuildPrompt(grounding.ModelRequest{Query: "q"})
	if !strings.Contains(p, "Grounded: no") || !strings.Contains(p, "hedge") || !strings.Contains(p, "(none)") {
		t.Fatalf("prompt=%q", p)
	}
}

func TestBuildPromptVerbatim(t *testing.T) {
	if p := BuildPrompt(grounding.ModelRequest{Query: "q", Prompt: "composed"}); p != "composed" {
		t.Fatalf("prompt=%q", p)
	}
}

func TestGenerateOutputVariants(t *testing.T) {
	cases := map[string]struct {
		body, text, model string
		tokens            int
	}{
		"output_text": {`{"output_text":"hi there","model":"m-2","usage":{"total_tokens":12}}`, "hi there", "m-2", 12},
		"content parts": {
			`{"output":[{"content":[{"text":"a"},{"text":"b"}]},{"content":[{"text":"c"}]}]}`,
			"abc", "m-1", 0,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := &http.Client{
				Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
					if req.URL.Path != "/v1/responses" {
						t.Fatalf("unexpected path: %s", req.URL.Path)
					}
					if req.Header.Get("Authorization") != "Bearer sk-test" {
						t.Fatalf("missing bearer")
					}
					var in map[string]any
					if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
						t.Fatalf("decode req: %v", err)
					}
					if in["model"] != "m-1" || in["temperature"] != 0.2 {
						t.Fatalf("request=%v", in)
					}
					if s, _ := in["input"].(string); !strings.Contains(s, "User query: hello") {
						t.Fatalf("input=%v", in["input"])
					}
					return respond(200, tc.body), nil
				}),
			}
			h, err := NewHTTPWithClient(HTTPConfig{BaseURL: "http://llm/v1", APIKey: "sk-test", Model: "m-1", Temperature: 0.2, Timeout: time.Second}, nil, client)
			if err != nil {
				t.Fatalf("NewHTTPWithClient: %v", err)
			}
			res := h.Generate(context.Background(), grounding.ModelRequest{Query: "hello", Grounded: true})
			if res.Error != "" || res.Text != tc.text || res.Model != tc.model || res.TokensUsed != tc.tokens {
				t.Fatalf("res=%+v", res)
			}
		})
	}
}

func TestGenerateFailSoft(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return respond(429, `{"error":{"message":"rate limited"}}`), nil
		}),
	}
	h, _ := NewHTTPWithClient(HTTPConfig{BaseURL: "http://llm", Model: "m-1"}, nil, client)
	res := h.Generate(context.Background(), grounding.ModelRequest{Query: "q"})
	if res.Text != UnavailableText || res.Error != "HTTP 429: rate limited" {
		t.Fatalf("res=%+v", res)
	}
}

func TestNewHTTPRequiresModel(t *testing.T) {
	if _, err := NewHTTP(HTTPConfig{BaseURL: "http://llm"}, nil); err == nil {
		t.Fatalf("expected error without model name")
	}
}

func TestMockGenerate(t *testing.T) {
	res := NewMock(false, nil).Generate(context.Background(), grounding.ModelRequest{Query: "q"})
	if res.Text != mockText || res.Model != "mock-llm-v1" || res.TokensUsed != 64 {
		t.Fatalf("res=%+v", res)
	}
}
