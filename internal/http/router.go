package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qa-history/internal/handlers"
	"qa-history/internal/observability"
	"qa-history/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAService  service.QAService
	Limiter    RateLimiter
	Metrics    *observability.Metrics
	CORSOrigin string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS(deps.CORSOrigin))

	askHandler := handlers.NewAskHandler(deps.QAService)
	historyHandler := handlers.NewHistoryHandler(deps.QAService)

	r.With(RateLimit(deps.Limiter, deps.Metrics, "/ask")).Method(http.MethodPost, "/ask", askHandler)
	r.With(RateLimit(deps.Limiter, deps.Metrics, "/history")).Method(http.MethodGet, "/history", historyHandler)

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler())
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return r
}
