package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/handler"
	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
	"github.com/notkshitijsingh/AgileFlowAI/internal/middleware"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

// Config holds router configuration
type Config struct {
	SessionService service.SessionService
	Hub            *handler.BoardHub
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	// Gatherer serves /metrics; nil uses the default prometheus registry
	Gatherer    prometheus.Gatherer
	BasePath    string
	CORSOrigins []string
}

// Setup sets up the router with all routes and middleware
func Setup(cfg Config) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}

	hub := cfg.Hub
	if hub == nil {
		hub = handler.NewBoardHub(cfg.Logger)
	}

	healthHandler := handler.NewHealthHandler(cfg.Redis)
	sessionHandler := handler.NewSessionHandler(cfg.SessionService, cfg.Logger)
	boardHandler := handler.NewBoardHandler(cfg.SessionService, cfg.Logger)
	tipHandler := handler.NewTipHandler(cfg.SessionService, cfg.Logger)
	wsHandler := handler.NewWSHandler(cfg.SessionService, hub, cfg.CORSOrigins, cfg.Logger)

	metricsHandler := gin.WrapH(promhttp.Handler())
	if cfg.Gatherer != nil {
		metricsHandler = gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Health and metrics at root for probes and scrapers
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", metricsHandler)

	api := router.Group(cfg.BasePath)
	{
		if cfg.BasePath != "" && cfg.BasePath != "/" {
			api.GET("/health", healthHandler.Health)
			api.GET("/ready", healthHandler.Ready)
			api.GET("/metrics", metricsHandler)
		}

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionHandler.CreateSession)
			sessions.GET("/:sessionId", sessionHandler.GetSession)
			sessions.POST("/:sessionId/reset", sessionHandler.Reset)
			sessions.POST("/:sessionId/back", sessionHandler.BackToDetails)
			sessions.POST("/:sessionId/stories/suggest", sessionHandler.SuggestStories)
			sessions.PUT("/:sessionId/project", sessionHandler.SetProjectDetails)
			sessions.POST("/:sessionId/board", sessionHandler.GenerateBoard)

			sessions.GET("/:sessionId/board", boardHandler.GetBoard)
			sessions.GET("/:sessionId/board/summary", boardHandler.GetSummary)
			sessions.POST("/:sessionId/columns/:columnId/tasks", boardHandler.AddTask)
			sessions.DELETE("/:sessionId/columns/:columnId/tasks/:taskId", boardHandler.DeleteTask)
			sessions.PUT("/:sessionId/tasks/:taskId", boardHandler.UpdateTask)
			sessions.POST("/:sessionId/tasks/:taskId/move", boardHandler.MoveTask)
			sessions.PUT("/:sessionId/tasks/:taskId/assignee", boardHandler.SetAssignee)
			sessions.POST("/:sessionId/tasks/:taskId/dependencies", boardHandler.AddDependency)
			sessions.DELETE("/:sessionId/tasks/:taskId/dependencies/:depId", boardHandler.RemoveDependency)
			sessions.GET("/:sessionId/tasks/:taskId/dependency-candidates", boardHandler.DependencyCandidates)

			sessions.POST("/:sessionId/tip", tipHandler.GetTip)
			sessions.GET("/:sessionId/ws", wsHandler.HandleWebSocket)
		}
	}

	return router
}
