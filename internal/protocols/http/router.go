package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"radruga/internal/core"
	"radruga/internal/metrics"
	"radruga/pkg/config"
	"radruga/pkg/logger"
)

// Server manages HTTP REST API server
type Server struct {
	router  *gin.Engine
	config  *config.Config
	svc     *core.Services
	metrics *metrics.Metrics
	httpSrv *http.Server
	started time.Time
}

// NewServer creates a new HTTP server with all handlers
func NewServer(cfg *config.Config, svc *core.Services, m *metrics.Metrics) *Server {
	mode := cfg.Server.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()

	// Global middleware
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(m))
	router.Use(gin.CustomRecovery(recoverCatalogDefect))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	s := &Server{
		router:  router,
		config:  cfg,
		svc:     svc,
		metrics: m,
		started: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		// Public catalog
		v1.GET("/ratings", OptionalAuthMiddleware(s.svc.Auth), s.getRatings)
		v1.GET("/person-qualities", s.getPersonQualities)

		player := v1.Group("", AuthMiddleware(s.svc.Auth))
		{
			player.POST("/profile", s.register)
			player.GET("/profile", s.getProfile)
			player.PUT("/profile", s.updateProfile)
			player.GET("/profile/mission-sets", s.getMissionSetsForUser)

			player.GET("/missions", s.getMissionsForUser)
			player.GET("/missions/search", s.searchMissions)
			player.GET("/missions/:id", s.getMission)
			player.POST("/missions/:id/complete", s.completeMission)
			player.POST("/missions/:id/hints/:hint_id", s.requestHint)

			player.POST("/quiz/answer", s.answerQuestion)
			player.POST("/quiz/complete", s.completeQuiz)

			player.POST("/kind-actions", s.addKindAction)
			player.GET("/kind-actions", s.getKindActions)
		}

		admin := v1.Group("/admin", AuthMiddleware(s.svc.Auth), AdminMiddleware())
		{
			admin.GET("/requests", s.listRequests)
			admin.POST("/requests/:id/approve", s.approveRequest)
			admin.POST("/requests/:id/decline", s.declineRequest)

			admin.GET("/missions", s.listMissions)
			admin.POST("/missions", s.addMission)
			admin.PUT("/missions/:id", s.updateMission)
			admin.DELETE("/missions/:id", s.deleteMission)

			admin.GET("/mission-sets", s.listMissionSets)
			admin.POST("/mission-sets", s.addMissionSet)
			admin.PUT("/mission-sets/:id", s.updateMissionSet)
			admin.DELETE("/mission-sets/:id", s.deleteMissionSet)

			admin.GET("/aliases", s.listAliases)
			admin.POST("/aliases", s.addAlias)
			admin.POST("/person-qualities", s.addPersonQuality)

			admin.POST("/ratings/rebuild", s.rebuildRatings)
			admin.POST("/jobs/daily", s.runDailyJob)
			admin.GET("/counters", s.getCounters)
		}
	}
}

// Start serves until Shutdown is called
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Infof("HTTP server listening on %s", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}
