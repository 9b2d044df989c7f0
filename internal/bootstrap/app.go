// Package bootstrap wires configuration into the registry, its upstream
// clients, the audit trail, the demo loader and the chat agent.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/agent"
	"github.com/aitools/aitools/internal/audit"
	"github.com/aitools/aitools/internal/catalog"
	"github.com/aitools/aitools/internal/config"
	"github.com/aitools/aitools/internal/demo"
	"github.com/aitools/aitools/internal/security"
	"github.com/aitools/aitools/internal/service"
	"github.com/aitools/aitools/internal/tools"
)

// Pinger is a dependency the health endpoint can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// App holds the wired components.
type App struct {
	Config   *config.Config
	Mode     tools.Mode
	Registry *tools.Registry
	Catalog  *catalog.Catalog
	Demos    *demo.Loader
	Audit    *audit.Logger
	// Agent is nil when no Anthropic key is configured.
	Agent *agent.Agent

	checks  map[string]Pinger
	closers []func()
}

// New builds an App. Optional dependencies that fail to connect are logged
// and left out; only invalid configuration is an error.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	mode, err := tools.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	app := &App{
		Config:  cfg,
		Mode:    mode,
		Catalog: cat,
		checks:  make(map[string]Pinger),
	}

	// ─── Audit ──────────────────────────────────────────────────────────────────
	var sinks []audit.Sink
	if cfg.ElasticsearchEnabled {
		es, err := audit.NewESSink(audit.ESOptions{
			Addresses:   cfg.ElasticsearchAddresses,
			Username:    cfg.ElasticsearchUser,
			Password:    cfg.ElasticsearchPassword,
			APIKey:      cfg.ElasticsearchAPIKey,
			Index:       cfg.AuditIndex,
			VerifyCerts: cfg.ElasticsearchVerifyCerts,
			MaxRetries:  cfg.ElasticsearchMaxRetries,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Elasticsearch audit sink unavailable")
		} else {
			sinks = append(sinks, es)
		}
	}
	if cfg.PostgresDSN != "" {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pg, err := audit.NewPostgresSink(pgCtx, cfg.PostgresDSN, cfg.AuditTable)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Postgres audit sink unavailable")
		} else {
			sinks = append(sinks, pg)
		}
	}
	for _, s := range sinks {
		app.checks["audit_"+s.Name()] = s
	}
	app.Audit = audit.NewLogger(cfg.EnableAuditLogging, security.NewMasker(cfg.SensitiveKeys), sinks...)
	app.closers = append(app.closers, app.Audit.Close)

	// ─── Registry ───────────────────────────────────────────────────────────────
	up := NewUpstreams(cfg)
	if up.Shop.Configured() {
		app.checks["shop_mcp"] = up.Shop
	}
	app.Registry = tools.NewRegistry(app.Audit)
	if err := tools.RegisterBuiltins(app.Registry, up); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	// ─── Demo cards ─────────────────────────────────────────────────────────────
	store, err := app.demoStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Demos = demo.NewLoader(app.Registry, demo.DefaultPresets(), store, demo.Options{
		TTL:         cfg.DemoCacheTTL,
		Concurrency: cfg.DemoConcurrency,
		Timeout:     cfg.DemoRenderTimeout,
	})

	// ─── AI Agent ───────────────────────────────────────────────────────────────
	if cfg.AnthropicAPIKey != "" {
		app.Agent = agent.New(agent.Options{
			APIKey:        cfg.AnthropicAPIKey,
			BaseURL:       cfg.AnthropicBaseURL,
			Model:         cfg.AnthropicModel,
			MaxTokens:     cfg.AgentMaxTokens,
			MaxIterations: cfg.AgentMaxIterations,
			RouteTools:    cfg.AgentRouteTools,
		},
			app.Registry,
			agent.NewToolRouter(cat.Tools()),
			security.NewPromptValidator(cfg.MaxPromptLength),
			security.NewCostTracker(cfg.MaxTokensPerDay, security.Pricing{
				InputPerMTok:  cfg.InputPricePerMTok,
				OutputPerMTok: cfg.OutputPricePerMTok,
			}),
		)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - chat disabled")
	}

	log.Info().
		Str("mode", string(app.Mode)).
		Int("tools", app.Registry.Len()).
		Bool("shop_mcp", up.Shop.Configured()).
		Bool("web_search", up.WebSearch.Configured()).
		Bool("translate", up.Translate.Configured()).
		Int("audit_sinks", len(sinks)).
		Str("demo_cache", cfg.CacheBackend).
		Bool("chat_enabled", app.Agent != nil).
		Msg("service configuration")

	return app, nil
}

func (a *App) demoStore(ctx context.Context) (demo.Store, error) {
	if a.Config.CacheBackend != "redis" {
		return demo.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis_url: %w", err)
	}
	client := redis.NewClient(opts)
	store := demo.NewRedisStore(client, a.Config.RedisKey)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Redis demo cache unreachable, demos will be re-rendered until it recovers")
	}
	a.checks["demo_cache"] = store
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing Redis client")
		}
	})
	return store, nil
}

// Checks returns the dependencies to ping on /health, by name.
func (a *App) Checks() map[string]Pinger {
	out := make(map[string]Pinger, len(a.checks))
	for k, v := range a.checks {
		out[k] = v
	}
	return out
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewUpstreams builds the upstream clients from cfg. Each upstream gets its
// own throttle.
func NewUpstreams(cfg *config.Config) tools.Upstreams {
	client := func(name string, rps float64) *service.HTTPClient {
		return service.NewHTTPClient(service.HTTPOptions{
			Name:      name,
			Timeout:   cfg.UpstreamTimeout,
			RateLimit: rps,
			Burst:     max(1, int(rps)),
			UserAgent: cfg.UserAgent,
		})
	}
	rps := cfg.UpstreamRateLimit
	return tools.Upstreams{
		Shop: service.NewMCPClient(client("shop-mcp", rps), service.MCPOptions{
			Endpoint:      cfg.ShopMCPURL,
			ClientName:    "aitools",
			ClientVersion: Version,
		}),
		Stats: service.NewStatsService(client("usgs", rps), cfg.QuakeFeedURL),
		Weather: service.NewWeatherService(
			client("nominatim", cfg.GeocodeRateLimit),
			client("open-meteo", rps),
			cfg.GeocodeURL, cfg.ForecastURL,
		),
		News:      service.NewNewsService(client("hn-algolia", rps), cfg.NewsURL),
		Translate: service.NewTranslateService(client("libretranslate", rps), cfg.TranslateURL, cfg.TranslateAPIKey),
		WebSearch: service.NewWebSearchService(client("brave", rps), cfg.WebSearchURL, cfg.BraveAPIKey),
		QRCode:    service.NewQRCodeService(client("qrserver", rps), cfg.QRCodeURL),
		Timeout:   cfg.UpstreamTimeout,
		Now:       time.Now,
	}
}
