package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`

	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`

	// JWTSecret enables HS256 bearer auth on /api routes when set.
	JWTSecret string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
}

type OrchestratorConfig struct {
	// Policy is "strict" (answer-mode gated) or "threshold" (grounding-quality gated).
	Policy string `json:"policy" yaml:"policy"`

	// ParallelWeb runs the web crawl alongside the resolver when the policy
	// can decide it from options alone.
	ParallelWeb bool `json:"parallel_web,omitempty" yaml:"parallel_web,omitempty"`

	CoverageMin   float64 `json:"coverage_min" yaml:"coverage_min"`
	ConfidenceMin float64 `json:"confidence_min" yaml:"confidence_min"`

	// OwnerSlug is named in no-results messages. Defaults to "agentnet".
	OwnerSlug string `json:"owner_slug,omitempty" yaml:"owner_slug,omitempty"`

	AuditTimeout Duration `json:"audit_timeout" yaml:"audit_timeout"`
}

type ResolverConfig struct {
	Mode             string   `json:"mode" yaml:"mode"`
	BaseURL          string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	NodeEndpoint     string   `json:"node_endpoint,omitempty" yaml:"node_endpoint,omitempty"`
	CapsulesEndpoint string   `json:"capsules_endpoint,omitempty" yaml:"capsules_endpoint,omitempty"`
	QueryEndpoint    string   `json:"query_endpoint,omitempty" yaml:"query_endpoint,omitempty"`
	Timeout          Duration `json:"timeout" yaml:"timeout"`
	APIKey           string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	OwnerSlug        string   `json:"owner_slug,omitempty" yaml:"owner_slug,omitempty"`
	QueryLimit       int      `json:"query_limit,omitempty" yaml:"query_limit,omitempty"`
	MockLatency      bool     `json:"mock_latency" yaml:"mock_latency"`
}

type WebConfig struct {
	Mode        string   `json:"mode" yaml:"mode"`
	BaseURL     string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout     Duration `json:"timeout" yaml:"timeout"`
	Limit       int      `json:"limit,omitempty" yaml:"limit,omitempty"`
	MockLatency bool     `json:"mock_latency" yaml:"mock_latency"`
}

type ModelConfig struct {
	Mode        string   `json:"mode" yaml:"mode"`
	BaseURL     string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey      string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64  `json:"temperature" yaml:"temperature"`
	Timeout     Duration `json:"timeout" yaml:"timeout"`
	MockLatency bool     `json:"mock_latency" yaml:"mock_latency"`
}

type DBConfig struct {
	// Persist turns the database audit sink and the conversations API on.
	Persist bool `json:"persist" yaml:"persist"`
	// Sync runs AutoMigrate at start.
	Sync bool `json:"sync" yaml:"sync"`

	Driver   string `json:"driver" yaml:"driver"`
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	SSLMode  string `json:"sslmode,omitempty" yaml:"sslmode,omitempty"`
}

type RedisConfig struct {
	// Addr enables the trace cache when non-empty.
	Addr     string   `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int      `json:"db,omitempty" yaml:"db,omitempty"`
	TraceTTL Duration `json:"trace_ttl" yaml:"trace_ttl"`
}

type Config struct {
	// Env is the runtime environment; "production" locks down test-only overrides.
	Env            string `json:"env" yaml:"env"`
	LogMode        string `json:"log_mode,omitempty" yaml:"log_mode,omitempty"`
	AllowForceFail bool   `json:"allow_forcefail,omitempty" yaml:"allow_forcefail,omitempty"`

	HTTP         HTTPConfig         `json:"http" yaml:"http"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Resolver     ResolverConfig     `json:"resolver" yaml:"resolver"`
	Web          WebConfig          `json:"web" yaml:"web"`
	Model        ModelConfig        `json:"model" yaml:"model"`
	DB           DBConfig           `json:"db" yaml:"db"`
	Redis        RedisConfig        `json:"redis" yaml:"redis"`
}

// Production reports whether the runtime is locked down.
func (c *Config) Production() bool {
	return c != nil && c.Env == "production"
}

// ForceFailAllowed reports whether the mock resolver may honour the force-fail token.
func (c *Config) ForceFailAllowed() bool {
	return !c.Production() || c.AllowForceFail
}
