package http

import (
	"net/http"

	"care-registry/internal/delivery/http/handler"
	"care-registry/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	existenceHandler  *handler.ExistenceHandler
	healthHandler     *handler.HealthHandler
	metricsHandler    http.Handler
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	metricsMiddleware *middleware.MetricsMiddleware
}

func NewRouter(
	existenceHandler *handler.ExistenceHandler,
	healthHandler *handler.HealthHandler,
	metricsHandler http.Handler,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		existenceHandler:  existenceHandler,
		healthHandler:     healthHandler,
		metricsHandler:    metricsHandler,
		corsMiddleware:    corsMiddleware,
		loggingMiddleware: loggingMiddleware,
		metricsMiddleware: metricsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Existence check, kept at the root path for existing clients.
	// OPTIONS is routed so the CORS middleware can answer preflight requests.
	r.router.HandleFunc("/check", r.existenceHandler.CheckExistence).Methods(http.MethodPost, http.MethodOptions)
	r.router.HandleFunc("/health", r.healthHandler.Live).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/check", r.existenceHandler.CheckExistence).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/health", r.healthHandler.Live).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", r.healthHandler.Ready).Methods(http.MethodGet)

	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.metricsMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}
