package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestPostSendsJSONWithBearer(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPost {
				t.Fatalf("method=%s", req.Method)
			}
			if req.URL.String() != "http://upstream/v1/resolve/query" {
				t.Fatalf("url=%s", req.URL)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer k-1" {
				t.Fatalf("authorization=%q", got)
			}
			var in map[string]any
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in["q"] != "hello" {
				t.Fatalf("q=%v", in["q"])
			}
			return jsonResponse(http.StatusOK, `{"ok":true}`), nil
		}),
	}

	c, err := NewWithHTTPClient(Options{BaseURL: "http://upstream/", APIKey: "k-1", Timeout: time.Second}, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	raw, err := c.Post(context.Background(), "/v1/resolve/query", map[string]any{"q": "hello"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("raw=%s", raw)
	}
}

func TestPostNoAuthHeaderWithoutKey(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") != "" {
				t.Fatalf("unexpected authorization header")
			}
			return jsonResponse(http.StatusOK, `{}`), nil
		}),
	}
	c, _ := NewWithHTTPClient(Options{BaseURL: "http://upstream"}, client)
	if _, err := c.Post(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Post: %v", err)
	}
}

func TestPostHTTPError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadGateway, `{"error":{"code":"UPSTREAM","message":"index offline"}}`), nil
		}),
	}
	c, _ := NewWithHTTPClient(Options{BaseURL: "http://upstream"}, client)

	_, err := c.Post(context.Background(), "/x", map[string]any{})
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d", he.StatusCode)
	}
	if he.Message() != "index offline" {
		t.Fatalf("message=%q", he.Message())
	}
}

func TestHTTPErrorMessageFallbacks(t *testing.T) {
	cases := map[string]string{
		`{"error":{"code":"NOPE"}}`: "NOPE",
		`{"message":"flat"}`:        "flat",
		`not json`:                  "",
		``:                          "",
	}
	for body, want := range cases {
		if got := (&HTTPError{StatusCode: 500, Body: body}).Message(); got != want {
			t.Fatalf("body=%q message=%q want=%q", body, got, want)
		}
	}
}

func TestPostInvalidJSON(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `<html>`), nil
		}),
	}
	c, _ := NewWithHTTPClient(Options{BaseURL: "http://upstream"}, client)
	if _, err := c.Post(context.Background(), "/x", nil); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err=%v", err)
	}
}

func TestPostTimeout(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}),
	}
	c, _ := NewWithHTTPClient(Options{BaseURL: "http://upstream", Timeout: 20 * time.Millisecond}, client)

	_, err := c.Post(context.Background(), "/x", nil)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if IsTimeout(errors.New("connection refused")) {
		t.Fatalf("plain error reported as timeout")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "  "}); err == nil || !strings.Contains(err.Error(), "base url") {
		t.Fatalf("err=%v", err)
	}
}
