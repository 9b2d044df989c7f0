// Package config loads service settings from defaults, an optional config
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AITOOLS_PORT.
const EnvPrefix = "AITOOLS"

type Config struct {
	// Server
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	APIPrefix   string `mapstructure:"api_prefix"`
	LogLevel    string `mapstructure:"log_level"`
	// Mode is the invocation mode used when a request does not name one.
	Mode string `mapstructure:"mode"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Auth
	APIKeyHeader string   `mapstructure:"api_key_header"`
	APIKeys      []string `mapstructure:"api_keys"`
	EnableAuth   bool     `mapstructure:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// Upstreams
	UpstreamTimeout   time.Duration `mapstructure:"upstream_timeout"`
	UpstreamRateLimit float64       `mapstructure:"upstream_rate_limit"`
	GeocodeRateLimit  float64       `mapstructure:"geocode_rate_limit"`
	UserAgent         string        `mapstructure:"user_agent"`
	ShopMCPURL        string        `mapstructure:"shop_mcp_url"`
	QuakeFeedURL      string        `mapstructure:"quake_feed_url"`
	GeocodeURL        string        `mapstructure:"geocode_url"`
	ForecastURL       string        `mapstructure:"forecast_url"`
	NewsURL           string        `mapstructure:"news_url"`
	WebSearchURL      string        `mapstructure:"web_search_url"`
	BraveAPIKey       string        `mapstructure:"brave_api_key"`
	TranslateURL      string        `mapstructure:"translate_url"`
	TranslateAPIKey   string        `mapstructure:"translate_api_key"`
	QRCodeURL         string        `mapstructure:"qrcode_url"`

	// Demo cards
	DemoCacheTTL      time.Duration `mapstructure:"demo_cache_ttl"`
	DemoConcurrency   int           `mapstructure:"demo_concurrency"`
	DemoRenderTimeout time.Duration `mapstructure:"demo_render_timeout"`
	CacheBackend      string        `mapstructure:"cache_backend"` // "memory" | "redis"
	RedisURL          string        `mapstructure:"redis_url"`
	RedisKey          string        `mapstructure:"redis_key"`

	// Audit
	EnableAuditLogging       bool     `mapstructure:"enable_audit_logging"`
	SensitiveKeys            []string `mapstructure:"sensitive_keys"`
	ElasticsearchEnabled     bool     `mapstructure:"elasticsearch_enabled"`
	ElasticsearchAddresses   []string `mapstructure:"elasticsearch_addresses"`
	ElasticsearchUser        string   `mapstructure:"elasticsearch_user"`
	ElasticsearchPassword    string   `mapstructure:"elasticsearch_password"`
	ElasticsearchAPIKey      string   `mapstructure:"elasticsearch_api_key"`
	ElasticsearchVerifyCerts bool     `mapstructure:"elasticsearch_verify_certs"`
	ElasticsearchMaxRetries  int      `mapstructure:"elasticsearch_max_retries"`
	AuditIndex               string   `mapstructure:"audit_index"`
	PostgresDSN              string   `mapstructure:"postgres_dsn"`
	AuditTable               string   `mapstructure:"audit_table"`

	// AI / LLM
	AnthropicAPIKey    string  `mapstructure:"anthropic_api_key"`
	AnthropicBaseURL   string  `mapstructure:"anthropic_base_url"` // override for a compatible proxy
	AnthropicModel     string  `mapstructure:"anthropic_model"`
	AgentMaxTokens     int     `mapstructure:"agent_max_tokens"`
	AgentMaxIterations int     `mapstructure:"agent_max_iterations"`
	AgentTimeout       int     `mapstructure:"agent_timeout"`
	AgentRouteTools    bool    `mapstructure:"agent_route_tools"`
	MaxPromptLength    int     `mapstructure:"max_prompt_length"`
	MaxTokensPerDay    int64   `mapstructure:"max_tokens_per_day"`
	InputPricePerMTok  float64 `mapstructure:"input_price_per_mtok"`
	OutputPricePerMTok float64 `mapstructure:"output_price_per_mtok"`
}

// providerEnv are well-known variables read without the prefix.
var providerEnv = map[string]string{
	"anthropic_api_key":  "ANTHROPIC_API_KEY",
	"anthropic_base_url": "ANTHROPIC_BASE_URL",
	"brave_api_key":      "BRAVE_API_KEY",
	"translate_api_key":  "LIBRETRANSLATE_API_KEY",
	"translate_url":      "LIBRETRANSLATE_URL",
	"shop_mcp_url":       "SHOP_MCP_URL",
	"redis_url":          "REDIS_URL",
	"postgres_dsn":       "DATABASE_URL",
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("api_prefix", DefaultAPIPrefix)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("mode", DefaultMode)
	v.SetDefault("cors_origins", DefaultCORSOrigins)
	v.SetDefault("api_key_header", "X-API-Key")
	v.SetDefault("api_keys", []string{})
	v.SetDefault("enable_auth", false)
	v.SetDefault("rate_limit_per_minute", DefaultRateLimitPerMinute)

	v.SetDefault("upstream_timeout", DefaultUpstreamTimeout)
	v.SetDefault("upstream_rate_limit", DefaultUpstreamRateLimit)
	v.SetDefault("geocode_rate_limit", DefaultGeocodeRateLimit)
	v.SetDefault("user_agent", "")
	v.SetDefault("shop_mcp_url", "")
	v.SetDefault("quake_feed_url", "")
	v.SetDefault("geocode_url", "")
	v.SetDefault("forecast_url", "")
	v.SetDefault("news_url", "")
	v.SetDefault("web_search_url", "")
	v.SetDefault("brave_api_key", "")
	v.SetDefault("translate_url", "")
	v.SetDefault("translate_api_key", "")
	v.SetDefault("qrcode_url", "")

	v.SetDefault("demo_cache_ttl", DefaultDemoCacheTTL)
	v.SetDefault("demo_concurrency", DefaultDemoConcurrency)
	v.SetDefault("demo_render_timeout", DefaultDemoRenderTimeout)
	v.SetDefault("cache_backend", DefaultCacheBackend)
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_key", DefaultRedisKey)

	v.SetDefault("enable_audit_logging", true)
	v.SetDefault("sensitive_keys", DefaultSensitiveKeys)
	v.SetDefault("elasticsearch_enabled", false)
	v.SetDefault("elasticsearch_addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch_user", "")
	v.SetDefault("elasticsearch_password", "")
	v.SetDefault("elasticsearch_api_key", "")
	v.SetDefault("elasticsearch_verify_certs", true)
	v.SetDefault("elasticsearch_max_retries", DefaultElasticsearchRetry)
	v.SetDefault("audit_index", DefaultAuditIndex)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("audit_table", DefaultAuditTable)

	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_base_url", "")
	v.SetDefault("anthropic_model", DefaultAnthropicModel)
	v.SetDefault("agent_max_tokens", DefaultAgentMaxTokens)
	v.SetDefault("agent_max_iterations", DefaultAgentMaxIterations)
	v.SetDefault("agent_timeout", DefaultAgentTimeout)
	v.SetDefault("agent_route_tools", true)
	v.SetDefault("max_prompt_length", DefaultMaxPromptLength)
	v.SetDefault("max_tokens_per_day", DefaultMaxTokensPerDay)
	v.SetDefault("input_price_per_mtok", 3.0)
	v.SetDefault("output_price_per_mtok", 15.0)
}

// Load reads configuration into a Config. Precedence is flags bound on v,
// then environment, then the config file, then defaults. The file is path,
// or AITOOLS_CONFIG when path is empty; a missing file is an error only when
// one was named.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range providerEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Mode != "live" && c.Mode != "demo" {
		errs = append(errs, fmt.Errorf("mode must be live or demo, got %q", c.Mode))
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		errs = append(errs, fmt.Errorf("cache_backend must be memory or redis, got %q", c.CacheBackend))
	}
	if c.CacheBackend == "redis" && c.RedisURL == "" {
		errs = append(errs, errors.New("cache_backend redis requires redis_url"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("upstream_timeout must be positive"))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("api_prefix must start with /, got %q", c.APIPrefix))
	}
	return errors.Join(errs...)
}

// IsDevelopment selects console logging.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AuthEnabled reports whether requests must carry an API key.
func (c *Config) AuthEnabled() bool {
	return c.EnableAuth && len(c.APIKeys) > 0
}
