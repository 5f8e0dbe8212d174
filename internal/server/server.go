package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/splitstat/splitstat/internal/config"
	"github.com/splitstat/splitstat/internal/store"
)

type Server struct {
	store     store.Store
	cfg       *config.Config
	router    chi.Router
	startTime time.Time
}

func New(s store.Store, cfg *config.Config) *Server {
	srv := &Server{
		store:     s,
		cfg:       cfg,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/dashboard", s.handleDashboard)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/report", s.handleReport)
		r.Get("/report/download", s.handleReportDownload)
		r.Get("/plots", s.handlePlotList)
		r.Get("/plots/{name}", s.handlePlot)
	})
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)

	fmt.Println()
	fmt.Printf("splitstat running on http://localhost:%d\n", s.cfg.Server.Port)
	fmt.Printf("Dashboard: http://localhost:%d/dashboard\n", s.cfg.Server.Port)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")

	return http.ListenAndServe(addr, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}
