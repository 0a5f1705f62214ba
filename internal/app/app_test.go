package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

func loadConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	body := fmt.Sprintf(`{
		"resolver": {"mode": "mock", "mock_latency": false},
		"web": {"mode": "mock", "mock_latency": false},
		"model": {"mode": "mock", "mock_latency": false},
		"db": {"persist": true, "sync": true, "driver": "sqlite", "dsn": "file:%s?mode=memory&cache=shared"},
		"redis": {"addr": %q}
	}`, uuid.NewString(), redisAddr)
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ORCH_CONFIG_PATH", p)
	t.Setenv("REDIS_ADDR", redisAddr)
	t.Setenv("ENABLE_DB_PERSIST", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func call(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAppServesAndRecordsRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := NewWithConfig(ctx, loadConfig(t, mr.Addr()), logger.NewNop())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)
	r := a.Server.Engine

	rec := call(r, http.MethodPost, "/api/chat",
		`{"conversationId":"conv-app","message":{"role":"user","content":"what is acme"},"answerMode":"all"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Response string `json:"response"`
		Trace    struct {
			TraceVersion string `json:"traceVersion"`
			RequestID    string `json:"requestId"`
		} `json:"trace"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if out.Response == "" || out.Trace.RequestID == "" || out.Trace.TraceVersion != "0.2" {
		t.Fatalf("chat out=%+v", out)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.Audit.Wait(waitCtx); err != nil {
		t.Fatalf("audit wait: %v", err)
	}

	rec = call(r, http.MethodGet, "/api/conversations/conv-app/messages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("messages: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var hist struct {
		Messages []struct {
			MessageID string `json:"messageId"`
			Role      string `json:"role"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(hist.Messages) != 2 || hist.Messages[0].Role != "user" || hist.Messages[1].MessageID != out.Trace.RequestID {
		t.Fatalf("history=%+v", hist.Messages)
	}

	rec = call(r, http.MethodGet, "/api/traces/"+out.Trace.RequestID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), out.Trace.RequestID) {
		t.Fatalf("trace: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = call(r, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"db":true,"status":"ok","traceCache":true}` {
		t.Fatalf("health: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNewWithConfigRejectsUnknownMode(t *testing.T) {
	if _, err := NewWithConfig(context.Background(), &config.Config{}, nil); err == nil {
		t.Fatalf("expected error for empty gateway modes")
	}
}
