package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/agentnet/ant-orchestrator/internal/platform/envutil"
)

const (
	PolicyStrict    = "strict"
	PolicyThreshold = "threshold"

	ModeMock = "mock"
	ModeHTTP = "http"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":3001",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			CORSOrigins:       []string{"http://localhost:5173"},
		},
		Orchestrator: OrchestratorConfig{
			Policy:        PolicyStrict,
			CoverageMin:   0.8,
			ConfidenceMin: 0.7,
			OwnerSlug:     "agentnet",
			AuditTimeout:  Duration{Duration: 10 * time.Second},
		},
		Resolver: ResolverConfig{
			Mode:             ModeMock,
			BaseURL:          "http://localhost:5175",
			NodeEndpoint:     "/v1/resolve/node",
			CapsulesEndpoint: "/v1/resolve/capsules",
			QueryEndpoint:    "/v1/resolve/query",
			Timeout:          Duration{Duration: 5 * time.Second},
			QueryLimit:       20,
			MockLatency:      true,
		},
		Web: WebConfig{
			Mode:        ModeMock,
			BaseURL:     "http://localhost:5176",
			Timeout:     Duration{Duration: 6 * time.Second},
			Limit:       5,
			MockLatency: true,
		},
		Model: ModelConfig{
			Mode:        ModeMock,
			Temperature: 0.2,
			Timeout:     Duration{Duration: 30 * time.Second},
			MockLatency: true,
		},
		DB: DBConfig{
			Driver:  DriverPostgres,
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "ant_orchestrator",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			TraceTTL: Duration{Duration: 24 * time.Hour},
		},
	}
}

// Load builds the runtime configuration: defaults, then an optional config file,
// then .env, then process environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("ORCH_CONFIG_PATH"))
	if cfgPath == "" {
		cfgPath = discoverConfigFile()
	}
	if cfgPath != "" {
		if err := decodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discoverConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// decodeFile overlays the file onto cfg so omitted keys keep their defaults.
func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v, ok := envutil.String("APP_ENV"); ok {
		cfg.Env = v
	}
	if v, ok := envutil.String("LOG_MODE"); ok {
		cfg.LogMode = v
	}
	cfg.AllowForceFail = envutil.Bool("ALLOW_FORCEFAIL", cfg.AllowForceFail)

	if v, ok := envutil.String("PORT"); ok {
		if strings.Contains(v, ":") {
			cfg.HTTP.Addr = v
		} else {
			cfg.HTTP.Addr = ":" + v
		}
	}
	if v := envutil.List("CORS_ORIGINS"); len(v) > 0 {
		cfg.HTTP.CORSOrigins = v
	}
	if v, ok := envutil.String("API_JWT_SECRET"); ok {
		cfg.HTTP.JWTSecret = v
	}

	if v, ok := envutil.String("ORCH_POLICY"); ok {
		cfg.Orchestrator.Policy = v
	}
	cfg.Orchestrator.ParallelWeb = envutil.Bool("ORCH_PARALLEL_WEB", cfg.Orchestrator.ParallelWeb)

	if v, ok := envutil.String("RESOLVER_MODE"); ok {
		cfg.Resolver.Mode = v
	}
	if v, ok := envutil.String("RESOLVER_BASE_URL"); ok {
		cfg.Resolver.BaseURL = v
	}
	if v, ok := envutil.String("RESOLVER_NODE_ENDPOINT"); ok {
		cfg.Resolver.NodeEndpoint = v
	}
	if v, ok := envutil.String("RESOLVER_ENDPOINT"); ok {
		cfg.Resolver.CapsulesEndpoint = v
	}
	if v, ok := envutil.String("RESOLVER_QUERY_ENDPOINT"); ok {
		cfg.Resolver.QueryEndpoint = v
	}
	cfg.Resolver.Timeout.Duration = envutil.Millis("RESOLVER_TIMEOUT_MS", cfg.Resolver.Timeout.Duration)
	if v, ok := envutil.String("RESOLVER_API_KEY"); ok {
		cfg.Resolver.APIKey = v
	}
	if v, ok := envutil.String("RESOLVER_OWNER_SLUG"); ok {
		cfg.Resolver.OwnerSlug = v
		cfg.Orchestrator.OwnerSlug = v
	}

	if v, ok := envutil.String("WEB_RAG_MODE"); ok {
		cfg.Web.Mode = v
	}
	if v, ok := envutil.String("CAPSULIZER_BASE_URL"); ok {
		cfg.Web.BaseURL = v
	}
	cfg.Web.Timeout.Duration = envutil.Millis("CAPSULIZER_TIMEOUT_MS", cfg.Web.Timeout.Duration)

	if v, ok := envutil.String("LLM_MODE"); ok {
		cfg.Model.Mode = v
	}
	if v, ok := envutil.String("LLM_BASE_URL"); ok {
		cfg.Model.BaseURL = v
	}
	if v, ok := envutil.String("LLM_API_KEY"); ok {
		cfg.Model.APIKey = v
	}
	if v, ok := envutil.String("LLM_MODEL"); ok {
		cfg.Model.Model = v
	}
	cfg.Model.Timeout.Duration = envutil.Millis("LLM_TIMEOUT_MS", cfg.Model.Timeout.Duration)

	cfg.DB.Persist = envutil.Bool("ENABLE_DB_PERSIST", cfg.DB.Persist)
	cfg.DB.Sync = envutil.Bool("ENABLE_DB_SYNC", cfg.DB.Sync)
	if v, ok := envutil.String("DB_DRIVER"); ok {
		cfg.DB.Driver = v
	}
	if v, ok := envutil.String("DB_DSN"); ok {
		cfg.DB.DSN = v
	}
	if v, ok := envutil.String("DB_HOST"); ok {
		cfg.DB.Host = v
	}
	cfg.DB.Port = envutil.Int("DB_PORT", cfg.DB.Port)
	if v, ok := envutil.String("DB_USER"); ok {
		cfg.DB.User = v
	}
	if v, ok := envutil.String("DB_PASSWORD"); ok {
		cfg.DB.Password = v
	}
	if v, ok := envutil.String("DB_NAME"); ok {
		cfg.DB.Name = v
	}

	if v, ok := envutil.String("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := envutil.String("TRACE_CACHE_TTL"); ok {
		if d, err := parseTTL(v); err == nil {
			cfg.Redis.TraceTTL.Duration = d
		}
	}
}

// parseTTL accepts a Go duration ("6h") or a bare number of seconds.
func parseTTL(v string) (time.Duration, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func normalize(cfg *Config) error {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.LogMode) == "" {
		cfg.LogMode = cfg.Env
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":3001"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}

	o := &cfg.Orchestrator
	o.Policy = strings.ToLower(strings.TrimSpace(o.Policy))
	switch o.Policy {
	case "":
		o.Policy = PolicyStrict
	case PolicyStrict, PolicyThreshold:
	default:
		return fmt.Errorf("invalid orchestrator.policy=%q", o.Policy)
	}
	if o.CoverageMin < 0 || o.CoverageMin > 1 || o.ConfidenceMin < 0 || o.ConfidenceMin > 1 {
		return errors.New("orchestrator thresholds must be within [0,1]")
	}
	if strings.TrimSpace(o.OwnerSlug) == "" {
		o.OwnerSlug = "agentnet"
	}
	if o.AuditTimeout.Duration <= 0 {
		o.AuditTimeout = Duration{Duration: 10 * time.Second}
	}

	var err error
	if cfg.Resolver.Mode, err = normalizeMode("resolver", cfg.Resolver.Mode); err != nil {
		return err
	}
	if cfg.Web.Mode, err = normalizeMode("web", cfg.Web.Mode); err != nil {
		return err
	}
	if cfg.Model.Mode, err = normalizeMode("model", cfg.Model.Mode); err != nil {
		return err
	}

	cfg.Resolver.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Resolver.BaseURL), "/")
	cfg.Web.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Web.BaseURL), "/")
	cfg.Model.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Model.BaseURL), "/")

	if cfg.Resolver.Mode == ModeHTTP && cfg.Resolver.BaseURL == "" {
		return errors.New("resolver (http) missing base_url")
	}
	if cfg.Resolver.Timeout.Duration <= 0 {
		cfg.Resolver.Timeout = Duration{Duration: 5 * time.Second}
	}
	if cfg.Resolver.QueryLimit <= 0 {
		cfg.Resolver.QueryLimit = 20
	}
	if cfg.Web.Mode == ModeHTTP && cfg.Web.BaseURL == "" {
		return errors.New("web (http) missing base_url")
	}
	if cfg.Web.Timeout.Duration <= 0 {
		cfg.Web.Timeout = Duration{Duration: 6 * time.Second}
	}
	if cfg.Web.Limit <= 0 {
		cfg.Web.Limit = 5
	}
	if cfg.Model.Mode == ModeHTTP {
		if cfg.Model.BaseURL == "" {
			return errors.New("model (http) missing base_url")
		}
		if strings.TrimSpace(cfg.Model.Model) == "" {
			return errors.New("model (http) missing model")
		}
	}
	if cfg.Model.Timeout.Duration <= 0 {
		cfg.Model.Timeout = Duration{Duration: 30 * time.Second}
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	switch cfg.DB.Driver {
	case "", "postgresql", DriverPostgres:
		cfg.DB.Driver = DriverPostgres
	case "sqlite3", DriverSQLite:
		cfg.DB.Driver = DriverSQLite
	default:
		return fmt.Errorf("invalid db.driver=%q", cfg.DB.Driver)
	}

	if cfg.Redis.TraceTTL.Duration <= 0 {
		cfg.Redis.TraceTTL = Duration{Duration: 24 * time.Hour}
	}
	return nil
}

func normalizeMode(name, mode string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case "":
		return ModeMock, nil
	case ModeMock, ModeHTTP:
		return m, nil
	default:
		return "", fmt.Errorf("invalid %s.mode=%q", name, mode)
	}
}
