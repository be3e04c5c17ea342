// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"torchtally/src/app/http/handler"
	"torchtally/src/app/middleware"
	"torchtally/src/core/ports"
	"torchtally/src/core/usecase"
	"torchtally/src/infra/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// Handlers
	healthHandler     *handler.HealthHandler
	scoringHandler    *handler.ScoringHandler
	predictionHandler *handler.PredictionHandler
	standingsHandler  *handler.StandingsHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, repo ports.LeagueRepository) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	// Create services
	healthService := usecase.NewHealthService(repo, log)
	recalculator := usecase.NewRecalculator(repo, log)
	scoringService := usecase.NewScoringService(repo, recalculator, log)
	predictionService := usecase.NewPredictionService(repo, log)
	standingsService := usecase.NewStandingsService(repo, log)

	// Create handlers
	healthHandler := handler.NewHealthHandler(healthService)
	scoringHandler := handler.NewScoringHandler(scoringService)
	predictionHandler := handler.NewPredictionHandler(predictionService)
	standingsHandler := handler.NewStandingsHandler(standingsService)

	s := &Server{
		cfg:               cfg,
		log:               log,
		router:            router,
		healthHandler:     healthHandler,
		scoringHandler:    scoringHandler,
		predictionHandler: predictionHandler,
		standingsHandler:  standingsHandler,
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logging(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	// API v1 routes
	v1 := s.router.Group("/v1")
	{
		// Standings & scores (read-only)
		v1.GET("/leagues/:league_id/standings", s.standingsHandler.Standings)
		v1.GET("/leagues/:league_id/history", s.standingsHandler.History)
		v1.GET("/leagues/:league_id/episodes/:episode_id/scores", s.standingsHandler.EpisodeLeaderboard)
		v1.GET("/leagues/:league_id/episodes/:episode_id/teams/:team_id/score", s.standingsHandler.TeamEpisodeScore)
		v1.GET("/seasons/:season_id/players/:player_id/events", s.standingsHandler.PlayerEvents)

		// Team predictions (open until the deadline or lock)
		v1.PUT("/leagues/:league_id/episodes/:episode_id/teams/:team_id/predictions", s.predictionHandler.SubmitPredictions)
		v1.PUT("/leagues/:league_id/episodes/:episode_id/teams/:team_id/title-pick", s.predictionHandler.SubmitTitlePick)

		// Commissioner actions (shared token)
		commissioner := v1.Group("", middleware.CommissionerAuth(s.cfg.Commissioner.Token))
		{
			commissioner.POST("/leagues/:league_id/episodes/:episode_id/score", s.scoringHandler.ScoreEpisode)
			commissioner.POST("/leagues/:league_id/episodes/:episode_id/reset", s.scoringHandler.ResetEpisode)
			commissioner.POST("/leagues/:league_id/episodes/:episode_id/predictions/lock", s.predictionHandler.LockPredictions)
			commissioner.POST("/seasons/:season_id/episodes/:episode_id/score", s.scoringHandler.ScoreEpisodeAllLeagues)
			commissioner.POST("/seasons/:season_id/season-predictions/grade", s.scoringHandler.GradeSeasonPredictions)
		}
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	// Channel to receive shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.cfg.Server.Addr()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
