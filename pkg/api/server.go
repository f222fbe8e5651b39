// Package api provides a minimal HTTP control surface over the pipeline
// orchestrator and scraper (§6.3), grounded on the teacher's gin-based
// pkg/api server shape.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/canaryscope/canaryscope/pkg/database"
	"github.com/canaryscope/canaryscope/pkg/pipeline"
	"github.com/canaryscope/canaryscope/pkg/scraper"
	"github.com/canaryscope/canaryscope/pkg/store"
	"github.com/canaryscope/canaryscope/pkg/version"
	"github.com/gin-gonic/gin"
)

// Server is the HTTP control-surface server (§6.3).
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	dbClient *database.Client
	pool     *pipeline.WorkerPool
	state    *store.PipelineStateStore
	scraper  *scraper.Scraper
}

// NewServer creates a Server and registers its routes.
func NewServer(dbClient *database.Client, pool *pipeline.WorkerPool, state *store.PipelineStateStore, scr *scraper.Scraper) *Server {
	s := &Server{
		router:   gin.Default(),
		dbClient: dbClient,
		pool:     pool,
		state:    state,
		scraper:  scr,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/pipeline/start", s.pipelineStart)
		v1.POST("/pipeline/stop", s.pipelineStop)
		v1.POST("/pipeline/pause", s.pipelinePause)
		v1.POST("/pipeline/resume", s.pipelineResume)
		v1.GET("/pipeline/status", s.pipelineStatus)
		v1.POST("/pipeline/run_stage", s.pipelineRunStage)

		v1.POST("/scraper/run_async", s.scraperRunAsync)
		v1.POST("/scraper/stop", s.scraperStop)
		v1.GET("/scraper/progress", s.scraperProgress)
	}
}

// Start begins serving HTTP on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("api server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthResponse is GET /health's body.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) health(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK
	if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, healthResponse{Status: status, Version: version.GitCommit})
}
