package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures cross-cutting HTTP behaviour.
type RouterOptions struct {
	CORSOrigins []string
	RateRPS     float64
	RateBurst   int
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter mounts the wizard API under /api/v1 next to the health and
// metrics endpoints.
func NewRouter(wizard *WizardHandler, health *HealthHandler, opts RouterOptions, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.liveness)
	r.Get("/readyz", health.readiness)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
		r.Use(RateLimit(opts.RateRPS, opts.RateBurst))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", wizard.getSession)
			r.Get("/profile", wizard.getProfile)
			r.Post("/back", wizard.goBack)
			r.Post("/steps/{step}", wizard.submitStep)
			r.Put("/steps/{step}/draft", wizard.saveDraft)
			r.Post("/verify/{provider}", wizard.verify)
		})

		r.Route("/lookups", func(r chi.Router) {
			r.Get("/address", wizard.lookupAddress)
			r.Get("/value", wizard.estimateValue)
			r.Get("/tax", wizard.estimateTax)
		})
	})

	return r
}
