package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ledgercli/internal/config"
	"ledgercli/internal/dataprocessing"
	apierrors "ledgercli/internal/errors"
	"ledgercli/internal/exporter"
	"ledgercli/internal/metrics"
	custommw "ledgercli/internal/middleware"
)

// NewRouter assembles the full HTTP surface: middleware chain, the analysis
// API under /api, and the operational endpoints.
func NewRouter(cfg *config.Config, logger *slog.Logger) chi.Router {
	paths := config.NewPaths(cfg.Paths)
	errorHandler := apierrors.NewErrorHandler(logger)

	analyzeHandler := NewAnalyzeHandler(
		dataprocessing.NewAnalyzer(logger),
		exporter.NewWorkbookComposer(logger),
		exporter.NewLedgerExporter(paths),
		cfg.Server.MaxUploadBytes,
		dataprocessing.Options{AutoDetect: cfg.Engine.AutoDetect, Dedupe: cfg.Engine.Dedupe},
		logger,
		errorHandler,
	)
	healthHandler := NewHealthHandler()

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	if cfg.Server.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/", analyzeHandler.Routes())
	})

	r.Get("/healthz", healthHandler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
