// Package httptransport is the thin HTTP layer. Handlers delegate to the
// wizard controller and token issuer without embedding business logic.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brightpath/internal/platform/health"
	"brightpath/internal/platform/middleware"
)

// RouterConfig collects everything the router mounts.
type RouterConfig struct {
	Applications *ApplicationHandler
	Assistant    *AssistantHandler
	Health       *health.Handler
	Metadata     *middleware.MetadataConfig
	Registry     *prometheus.Registry
	Logger       *slog.Logger
}

// NewRouter wires all public endpoints with the middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Metadata(cfg.Metadata))

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	api := chi.NewRouter()
	api.Use(middleware.ContentTypeJSON)
	cfg.Applications.Register(api)
	if cfg.Assistant != nil {
		cfg.Assistant.Register(api)
	}
	r.Mount("/", api)

	return r
}
