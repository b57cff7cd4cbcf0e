package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/application/queries"
	"paperindex/interfaces/http/rest/handlers"
	"paperindex/interfaces/http/rest/middleware"
	"paperindex/pkg/errors"
)

// Metrics instruments requests and exposes the collected metrics
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// Options tunes the HTTP surface
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
	RequestTimeout time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	queries   *queries.Router
	inspector ports.StorageInspector
	metrics   Metrics
	options   Options
	logger    *zap.Logger
}

// NewRouter creates a new router instance. inspector and metrics are optional.
func NewRouter(
	queryRouter *queries.Router,
	inspector ports.StorageInspector,
	metrics Metrics,
	options Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		queries:   queryRouter,
		inspector: inspector,
		metrics:   metrics,
		options:   options,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := errors.NewErrorHandler(rt.logger, rt.options.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(rt.metrics.Middleware)
	}
	if rt.options.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.options.RequestTimeout))
	}

	if rt.options.EnableCORS {
		origins := rt.options.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/papers", func(r chi.Router) {
		paperHandler := handlers.NewPaperHandler(rt.queries, errorHandler, rt.logger)
		r.Get("/recent", paperHandler.Recent)
		r.Get("/search", paperHandler.Search)
		r.Get("/author/{name}", paperHandler.ByAuthor)
		r.Get("/keyword/{keyword}", paperHandler.ByKeyword)
		r.Get("/*", paperHandler.ByID)
	})

	router.NotFound(errorHandler.NotFound)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	writeStatus(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

// readinessCheck reports ready once the store answers a describe call
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.inspector == nil {
		writeStatus(w, http.StatusOK, map[string]interface{}{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	breakdown, err := rt.inspector.Breakdown(ctx)
	if err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeStatus(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"table":  breakdown.TableName,
	})
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
