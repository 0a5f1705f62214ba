package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int, body string) roundTripperFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		}, nil
	}
}

func TestCrawlNormalizesSources(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v1/web/crawl" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			var in map[string]any
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in["q"] != "acme widgets" || in["limit"] != float64(5) {
				t.Fatalf("request=%v", in)
			}
			return respond(200, `{"sources":[
				{"url":"https://a.example","title":"A","snippet":"alpha"},
				{"title":"no url"},
				{"url":"https://b.example","text":"beta body"}
			]}`)(req)
		}),
	}
	h, err := NewHTTPWithClient("http://capsulizer", time.Second, 0, nil, client)
	if err != nil {
		t.Fatalf("NewHTTPWithClient: %v", err)
	}

	res := h.Crawl(context.Background(), "acme widgets")
	if res.ErrorCode != "" {
		t.Fatalf("unexpected error %q", res.Error)
	}
	want := []grounding.WebSource{
		{Title: "A", URL: "https://a.example", Snippet: "alpha", Source: "web"},
		{URL: "https://b.example", Snippet: "beta body", Source: "web"},
	}
	if len(res.Results) != len(want) {
		t.Fatalf("results=%+v", res.Results)
	}
	for i := range want {
		if res.Results[i] != want[i] {
			t.Fatalf("result[%d]=%+v want=%+v", i, res.Results[i], want[i])
		}
	}
}

func TestCrawlFailSoft(t *testing.T) {
	cases := []struct {
		name    string
		rt      roundTripperFunc
		timeout time.Duration
		want    string
	}{
		{name: "status", rt: respond(502, `bad gateway`), want: "HTTP 502"},
		{
			name: "timeout",
			rt: func(req *http.Request) (*http.Response, error) {
				<-req.Context().Done()
				return nil, req.Context().Err()
			},
			timeout: 20 * time.Millisecond,
			want:    "timeout",
		},
		{
			name: "network",
			rt: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("no route to host")
			},
			want: "no route to host",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := NewHTTPWithClient("http://capsulizer", tc.timeout, 5, nil, &http.Client{Transport: tc.rt})
			res := h.Crawl(context.Background(), "q")
			if res.ErrorCode != grounding.ErrCodeWebUnavailable || res.Error != tc.want || len(res.Results) != 0 {
				t.Fatalf("res=%+v", res)
			}
		})
	}
}

func TestMockCrawl(t *testing.T) {
	res := NewMock(false, nil).Crawl(context.Background(), "hello")
	if len(res.Results) != 1 {
		t.Fatalf("results=%d", len(res.Results))
	}
	r := res.Results[0]
	if r.Title != `Web result for: "hello"` || r.URL != "https://example.com/mock" || r.Source != "web" {
		t.Fatalf("result=%+v", r)
	}
}
