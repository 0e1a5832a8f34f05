package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"downloadgate/internal/platform/metrics"
	"downloadgate/internal/platform/middleware"
	"downloadgate/pkg/platform/middleware/metadata"
	"downloadgate/pkg/platform/middleware/requesttime"
)

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the cross-cutting pieces every route shares.
type RouterConfig struct {
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	TrustedIPHeader string
	// Clock overrides request time; nil uses time.Now.
	Clock requesttime.Clock
}

// NewRouter wires the shared middleware chain and mounts each registrar.
// Request IDs are assigned first so recovery and logging can report them;
// client metadata is resolved before any handler runs.
func NewRouter(cfg RouterConfig, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(cfg.Metrics))
	}
	r.Use(requesttime.WithClock(cfg.Clock))
	r.Use(metadata.ClientMetadata(cfg.TrustedIPHeader))

	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}
