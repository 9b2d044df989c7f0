package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/bootstrap"
	"github.com/aitools/aitools/internal/handler"
	"github.com/aitools/aitools/internal/middleware"
)

func (s *Server) setupRoutes() http.Handler {
	cfg := s.app.Config

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - authentication is off")
	}

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(bootstrap.Version, s.app.Mode, s.app.Registry.Len(), s.app.Checks())
	toolsH := handler.NewToolsHandler(s.app.Registry, s.app.Catalog, s.app.Mode)
	demosH := handler.NewDemosHandler(s.app.Demos)

	var chatH *handler.ChatHandler
	if s.app.Agent != nil {
		chatH = handler.NewChatHandler(s.app.Agent)
	}

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.AuthEnabled() {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Get("/tools", toolsH.List)
			r.Get("/tools/{name}", toolsH.Get)
			r.Post("/tools/{name}/invoke", toolsH.Invoke)
			r.Get("/demos", demosH.List)

			if chatH != nil {
				r.Post("/chat", chatH.Chat)
			}
		})
	})

	return r
}
