package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/agro-advisor/api/handlers"
	"github.com/OldStager01/agro-advisor/api/middleware"
	"github.com/OldStager01/agro-advisor/api/websocket"
	"github.com/OldStager01/agro-advisor/internal/alerting"
	"github.com/OldStager01/agro-advisor/internal/auth"
	"github.com/OldStager01/agro-advisor/internal/metrics"
	"github.com/OldStager01/agro-advisor/internal/provider"
	"github.com/OldStager01/agro-advisor/internal/scheduler"
	"github.com/OldStager01/agro-advisor/internal/tracker"
	"github.com/OldStager01/agro-advisor/pkg/config"
	"github.com/OldStager01/agro-advisor/pkg/database"
	"github.com/OldStager01/agro-advisor/pkg/database/queries"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Deps carries everything the HTTP surface exposes
type Deps struct {
	DB         *database.DB
	Analyzer   handlers.Analyzer
	AlertStore *alerting.Store
	Tracker    *tracker.Tracker
	Scheduler  *scheduler.Scheduler
	Provider   provider.WeatherProvider
	Events     <-chan *models.Event
	Metrics    *metrics.Metrics
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	wsConfig    config.WebSocketConfig
	deps        Deps
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, deps Deps) *Server {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTDuration)
	wsHub := websocket.NewHub(&wsCfg, deps.Metrics)

	s := &Server{
		router:      router,
		config:      cfg,
		wsConfig:    wsCfg,
		deps:        deps,
		authService: authService,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if deps.Events != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Events)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.CORS)))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	advisoryRepo := queries.NewAdvisoryRepository(s.deps.DB)
	alertRepo := queries.NewAlertRepository(s.deps.DB)

	healthHandler := handlers.NewHealthHandler(s.deps.DB, s.deps.Provider)
	authHandler := handlers.NewAuthHandler(s.config, s.authService)
	advisoryHandler := handlers.NewAdvisoryHandler(advisoryRepo, s.deps.Analyzer, &s.config)
	alertHandler := handlers.NewAlertHandler(s.deps.AlertStore, alertRepo)
	performanceHandler := handlers.NewPerformanceHandler(s.deps.Tracker, s.deps.Scheduler)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		protected.POST("/locations/:id/analyze", advisoryHandler.Analyze)
		protected.GET("/locations/:id/advisory", advisoryHandler.GetLatest)
		protected.GET("/locations/:id/advisories", advisoryHandler.GetRecent)

		protected.GET("/alerts", alertHandler.ListActive)
		protected.GET("/locations/:id/alerts", alertHandler.ListByLocation)
		protected.GET("/locations/:id/alerts/history", alertHandler.History)

		protected.GET("/models/performance", performanceHandler.GetModelPerformance)
		protected.GET("/scheduler/status", performanceHandler.GetSchedulerStatus)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idleTimeout := s.config.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
