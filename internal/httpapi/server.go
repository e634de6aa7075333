package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"breedd/internal/analytics"
	"breedd/internal/breeds"
	"breedd/internal/manager"
	"breedd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Identify(ctx context.Context, data []byte, opts manager.IdentifyOptions) (*manager.Identification, error)
	Status() types.StatusResponse
	Ready() bool
	ModelLoaded() bool
}

type server struct {
	svc     Service
	catalog *breeds.Catalog
	tracker *analytics.Tracker
}

// NewMux builds the HTTP router. A nil catalog serves "not loaded" errors on
// the catalog routes; a nil tracker starts a fresh one.
func NewMux(svc Service, catalog *breeds.Catalog, tracker *analytics.Tracker) http.Handler {
	if catalog == nil {
		catalog = breeds.Empty()
	}
	if tracker == nil {
		tracker = analytics.New()
	}
	s := &server{svc: svc, catalog: catalog, tracker: tracker}

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsAllowedOrigins,
			AllowedMethods:   corsAllowedMethods,
			AllowedHeaders:   corsAllowedHeaders,
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.svc.Status())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predict", s.handlePredictUpload)
		r.Post("/predict/base64", s.handlePredictBase64)

		r.Get("/breeds", s.handleListBreeds)
		r.Get("/breeds/{breed_id}", s.handleGetBreed)
		r.Get("/breeds/state/{state_name}", s.handleBreedsByState)
		r.Get("/states", s.handleStates)
		r.Get("/government-schemes", s.handleSchemes)

		r.Get("/compare", s.handleCompare)
		r.Get("/compare/multi", s.handleCompareMulti)
		r.Get("/sustainability-ranking", s.handleRanking)

		r.Get("/analytics/summary", s.handleAnalytics)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleRoot godoc
// @Summary      Service banner
// @Tags         health
// @Produce      json
// @Success      200 {object} types.ServiceInfo
// @Router       / [get]
func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := types.ServiceInfo{Service: "breedd", Version: version, Status: "running"}
	if swaggerEnabled {
		info.Docs = "/swagger/index.html"
	}
	writeJSON(w, info)
}

// handleHealth godoc
// @Summary      Detailed health
// @Description  demo_mode is true while any classifier serves untrained weights.
// @Tags         health
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Router       /health [get]
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := s.svc.ModelLoaded()
	writeJSON(w, types.HealthResponse{
		Status:          "healthy",
		ModelLoaded:     loaded,
		DemoMode:        s.svc.Ready() && !loaded,
		BreedDataLoaded: s.catalog.Loaded(),
	})
}
