package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"
	DefaultMode        = "live"

	DefaultRateLimitPerMinute = 60

	DefaultUpstreamTimeout   = 10 * time.Second
	DefaultUpstreamRateLimit = 5.0 // requests per second per upstream
	DefaultGeocodeRateLimit  = 1.0 // Nominatim usage policy

	DefaultDemoCacheTTL      = 5 * time.Minute
	DefaultDemoConcurrency   = 4
	DefaultDemoRenderTimeout = 30 * time.Second
	DefaultCacheBackend      = "memory"
	DefaultRedisKey          = "aitools:demos"

	DefaultAuditIndex         = "aitools-audit"
	DefaultAuditTable         = "tool_invocations"
	DefaultElasticsearchRetry = 3

	DefaultAnthropicModel     = "claude-sonnet-4-6"
	DefaultAgentMaxTokens     = 4096
	DefaultAgentMaxIterations = 8
	DefaultAgentTimeout       = 120 // seconds

	DefaultMaxPromptLength = 2000
	DefaultMaxTokensPerDay = 0 // unlimited

	DefaultCORSMaxAge = 300
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

// DefaultSensitiveKeys are argument keys masked in audit records on top of
// the built-in email, phone and card patterns.
var DefaultSensitiveKeys = []string{
	"password", "secret", "token", "api_key", "access_key",
	"private_key", "ssn", "social_security",
}
