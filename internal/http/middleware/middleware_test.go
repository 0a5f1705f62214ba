package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agentnet/ant-orchestrator/internal/observability"
	"github.com/agentnet/ant-orchestrator/internal/platform/ctxutil"
)

const testSecret = "s3cret"

func signed(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := map[string]struct {
		header string
		want   int
	}{
		"valid":        {"Bearer " + signed(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "svc", ExpiresAt: future}), http.StatusOK},
		"lowercase":    {"bearer " + signed(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "svc"}), http.StatusOK},
		"missing":      {"", http.StatusUnauthorized},
		"wrong secret": {"Bearer " + signed(t, "other", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "svc"}), http.StatusUnauthorized},
		"wrong alg":    {"Bearer " + signed(t, testSecret, jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "svc"}), http.StatusUnauthorized},
		"expired":      {"Bearer " + signed(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "svc", ExpiresAt: past}), http.StatusUnauthorized},
		"garbage":      {"Bearer not-a-token", http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(NewAuthMiddleware(nil, testSecret).RequireAuth())
			r.GET("/api/chat", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(ContextKeySubject))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && rec.Body.String() != "svc" {
				t.Fatalf("subject=%q", rec.Body.String())
			}
			if tc.want == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"code":"UNAUTHORIZED"`) {
				t.Fatalf("body=%s", rec.Body.String())
			}
		})
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		if td == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	req.Header.Set(HeaderTraceID, "trace-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-42" || rec.Header().Get(HeaderRequestID) != "req-42" || rec.Header().Get(HeaderTraceID) != "trace-42" {
		t.Fatalf("echo: body=%q headers=%v", rec.Body.String(), rec.Header())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Header().Get(HeaderRequestID) == "" || rec.Header().Get(HeaderTraceID) == "" {
		t.Fatalf("expected minted ids, headers=%v", rec.Header())
	}
}

func TestRecoveryHidesPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(nil))
	r.GET("/boom", func(*gin.Context) { panic("db password leaked") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != "internal" || env.Error.Code != "INTERNAL" {
		t.Fatalf("env=%+v", env)
	}
}

func TestMetricsObservesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/traces/:requestId", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/traces/r"+string(rune('a'+i)), nil))
	}
	n, err := testutil.GatherAndCount(m.Registry(), "orchestrator_http_requests_total")
	if err != nil || n != 1 {
		t.Fatalf("want one route series, got %d (err=%v)", n, err)
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/x", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"message":"far too long"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}
