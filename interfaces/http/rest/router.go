// Package rest exposes the board editor over HTTP.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"boardedit/application/commands/bus"
	querybus "boardedit/application/queries/bus"
	"boardedit/infrastructure/config"
	"boardedit/interfaces/http/rest/handlers"
	"boardedit/interfaces/http/rest/middleware"
	pkgerrors "boardedit/pkg/errors"
	"boardedit/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errHandler *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errHandler,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestIDHeader)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.Metrics.Enabled {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.CORS.Enabled {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	if rt.cfg.Metrics.Enabled {
		router.Method(http.MethodGet, rt.cfg.Metrics.Path,
			promhttp.HandlerFor(rt.metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	boardHandler := handlers.NewBoardHandler(rt.commandBus, rt.queryBus, rt.errors, rt.cfg.Server.MaxRequestSize, rt.logger)

	router.Route("/api/v1/boards/{boardID}", func(r chi.Router) {
		r.Get("/", boardHandler.GetBoard)
		r.Get("/items", boardHandler.ItemsAt)
		r.Get("/activity", boardHandler.Activity)

		r.Post("/points", boardHandler.PlaceNetPoint)
		r.Post("/points/combine", boardHandler.CombinePoints)
		r.Post("/points/{pointID}/detach", boardHandler.DetachPoint)
		r.Post("/points/{pointID}/combine-all", boardHandler.CombineAllItemsUnderPoint)
		r.Post("/free-points", boardHandler.AddFreePoint)

		r.Post("/segments/combine", boardHandler.CombineSegments)
		r.Get("/segments/{segmentID}", boardHandler.GetSegment)
		r.Put("/segments/{segmentID}/signal", boardHandler.EditSegmentSignal)

		r.Post("/edits/begin", boardHandler.BeginEdit)
		r.Post("/edits/commit", boardHandler.CommitEdit)
		r.Post("/edits/abort", boardHandler.AbortEdit)

		r.Post("/undo", boardHandler.Undo)
		r.Post("/redo", boardHandler.Redo)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":      "healthy",
		"environment": string(rt.cfg.Environment),
	})
}
