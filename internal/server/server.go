package server

import (
	"log/slog"
	"net/http"

	"ecommerce-dashboard/internal/config"
	"ecommerce-dashboard/internal/handlers"
	"ecommerce-dashboard/internal/middleware"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/services"
)

type Server struct {
	mux          *http.ServeMux
	handler      http.Handler
	logger       *slog.Logger
	metrics      *observability.Metrics
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
}

func NewServer(cfg *config.Config, analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		metrics:      metrics,
		apiHandlers:  handlers.NewAPIHandlers(analytics, metrics, logger),
		sseHandlers:  handlers.NewSSEHandlers(analytics, logger),
		pageHandlers: handlers.NewPageHandlers(analytics, logger),
	}
	s.setupRoutes()

	// Metrics wraps the mux directly so it sees the matched pattern.
	s.handler = middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.TrustedProxy(cfg.Security),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.Security), logger),
		middleware.Tracing(),
		middleware.Metrics(metrics),
	)(s.mux)

	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleIndex)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// REST API endpoints
	s.mux.HandleFunc("GET /api/bounds", s.apiHandlers.HandleBounds)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/review-scores", s.apiHandlers.HandleReviewScores)
	s.mux.HandleFunc("GET /api/sales-by-category", s.apiHandlers.HandleSalesByCategory)
	s.mux.HandleFunc("GET /api/customer-points", s.apiHandlers.HandleCustomerPoints)
	s.mux.HandleFunc("GET /api/geo-density", s.apiHandlers.HandleGeoDensity)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/export.xlsx", s.apiHandlers.HandleExport)
	s.mux.HandleFunc("GET /charts/{chart}", s.apiHandlers.HandleChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
